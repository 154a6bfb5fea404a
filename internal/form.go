package internal

import (
	"net/url"

	formUtils "github.com/go-playground/form/v4"
)

// The decoder caches struct metadata and is safe for concurrent use.
var decoder = formUtils.NewDecoder()

type LoginData struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required,min=6"`
}

type SignupData struct {
	Prefix      UserPrefix `form:"prefix" json:"prefix" validate:"required,userprefix"`
	FirstName   string     `form:"firstName" json:"firstName" validate:"required"`
	MiddleName  string     `form:"middleName" json:"middleName" validate:"required"`
	LastName    string     `form:"lastName" json:"lastName" validate:"required"`
	Email       string     `form:"email" json:"email" validate:"required,email"`
	Password    string     `form:"password" json:"password" validate:"required,min=6"`
	Phone       string     `form:"phone" json:"phone" validate:"required"`
	DateOfBirth string     `form:"dateOfBirth" json:"dateOfBirth" validate:"required"`
	Gender      Gender     `form:"gender" json:"gender" validate:"required,gender"`
}

// LoginDefaults is the value bag a freshly mounted login form starts with.
func LoginDefaults() map[string]string {
	return map[string]string{
		"email":    "",
		"password": "",
	}
}

// SignupDefaults is the value bag a freshly mounted signup form starts with.
func SignupDefaults() map[string]string {
	return map[string]string{
		"prefix":      string(UserPrefixMR),
		"firstName":   "",
		"middleName":  "",
		"lastName":    "",
		"email":       "",
		"password":    "",
		"phone":       "",
		"dateOfBirth": "",
		"gender":      string(GenderUnspecified),
	}
}

func PopulateForm[TForm any](form TForm, values url.Values) (TForm, error) {
	err := decoder.Decode(&form, values)
	return form, err
}
