package internal

import "github.com/samber/lo"

// Option is a selectable machine value together with the label shown to the user.
type Option struct {
	Value string
	Label string
}

type UserPrefix string

const (
	UserPrefixMR   UserPrefix = "MR"
	UserPrefixMRS  UserPrefix = "MRS"
	UserPrefixMISS UserPrefix = "MISS"
)

var userPrefixLabels = map[UserPrefix]string{
	UserPrefixMR:   "Mr.",
	UserPrefixMRS:  "Mrs.",
	UserPrefixMISS: "Miss.",
}

// UserPrefixes returns the prefixes in display order.
func UserPrefixes() []UserPrefix {
	return []UserPrefix{UserPrefixMR, UserPrefixMRS, UserPrefixMISS}
}

func (p UserPrefix) Valid() bool {
	return lo.Contains(UserPrefixes(), p)
}

func (p UserPrefix) Label() string {
	return userPrefixLabels[p]
}

func UserPrefixOptions() []Option {
	return lo.Map(UserPrefixes(), func(p UserPrefix, _ int) Option {
		return Option{Value: string(p), Label: p.Label()}
	})
}

type Gender string

const (
	GenderMale        Gender = "MALE"
	GenderFemale      Gender = "FEMALE"
	GenderOther       Gender = "OTHER"
	GenderUnspecified Gender = "UNSPECIFIED"
)

var genderLabels = map[Gender]string{
	GenderMale:        "Male",
	GenderFemale:      "Female",
	GenderOther:       "Other",
	GenderUnspecified: "Unspecified",
}

// Genders returns the genders in display order.
func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale, GenderOther, GenderUnspecified}
}

func (g Gender) Valid() bool {
	return lo.Contains(Genders(), g)
}

func (g Gender) Label() string {
	return genderLabels[g]
}

func GenderOptions() []Option {
	return lo.Map(Genders(), func(g Gender, _ int) Option {
		return Option{Value: string(g), Label: g.Label()}
	})
}
