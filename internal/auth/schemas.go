package auth

import (
	"strings"

	"github.com/mkolodiy/go-auth-shell/internal"
	"github.com/mkolodiy/go-auth-shell/internal/schema"
	"github.com/samber/lo"
)

var (
	emailMessages = map[string]string{
		"required": "Email is required",
		"email":    "Invalid email",
	}
	passwordMessages = map[string]string{
		"required": "Password is required",
		"min":      "Password should have at least 6 characters",
	}
)

// LoginSchema validates internal.LoginData.
var LoginSchema = schema.MustNew(schema.Messages{
	"email":    emailMessages,
	"password": passwordMessages,
})

// SignupSchema validates internal.SignupData.
var SignupSchema = schema.MustNew(schema.Messages{
	"prefix": {
		"required":   "Prefix is required",
		"userprefix": "Prefix must be one of " + labels(internal.UserPrefixOptions()),
	},
	"firstName":   {"required": "First Name is required"},
	"middleName":  {"required": "Middle Name is required"},
	"lastName":    {"required": "Last Name is required"},
	"email":       emailMessages,
	"password":    passwordMessages,
	"phone":       {"required": "Phone is required"},
	"dateOfBirth": {"required": "Date of Birth is required"},
	"gender": {
		"required": "Gender is required",
		"gender":   "Gender must be one of " + labels(internal.GenderOptions()),
	},
})

func labels(options []internal.Option) string {
	return strings.Join(lo.Map(options, func(o internal.Option, _ int) string { return o.Label }), ", ")
}
