package routes

import (
	"github.com/a-h/templ"
	"github.com/mkolodiy/go-auth-shell/internal"
	"github.com/mkolodiy/go-auth-shell/internal/auth"
	"github.com/mkolodiy/go-auth-shell/internal/components"
	"github.com/mkolodiy/go-auth-shell/internal/controller"
)

type binder interface {
	Bind(field string) controller.Field
}

func textField(f binder, name, label, typ string) templ.Component {
	field := f.Bind(name)
	value := field.Value
	if typ == "password" {
		value = ""
	}
	return components.TextField(components.FieldProps{
		Name:         field.Name,
		Label:        label,
		Type:         typ,
		Value:        value,
		ErrorMessage: field.Error,
	})
}

func selectField(f binder, name, label string, options []internal.Option) templ.Component {
	field := f.Bind(name)
	return components.SelectField(components.SelectProps{
		Name:         field.Name,
		Label:        label,
		Value:        field.Value,
		Options:      options,
		ErrorMessage: field.Error,
	})
}

func loginView(f *auth.LoginForm, message string) templ.Component {
	return components.Form(components.FormProps{
		Action:  "/auth/login",
		FormID:  f.ID(),
		Submit:  "Login",
		Message: message,
		Footer:  components.SignupLink(),
	},
		textField(f, "email", "Email", "text"),
		textField(f, "password", "Password", "password"),
	)
}

func signupView(f *auth.SignupForm, message string) templ.Component {
	return components.Form(components.FormProps{
		Action:  "/auth/signup",
		FormID:  f.ID(),
		Submit:  "Submit",
		Message: message,
	},
		selectField(f, "prefix", "Prefix", internal.UserPrefixOptions()),
		selectField(f, "gender", "Gender", internal.GenderOptions()),
		textField(f, "firstName", "First Name", "text"),
		textField(f, "middleName", "Middle Name", "text"),
		textField(f, "lastName", "Last Name", "text"),
		textField(f, "email", "Email", "text"),
		textField(f, "password", "Password", "password"),
		textField(f, "phone", "Phone", "tel"),
		textField(f, "dateOfBirth", "Date of Birth", "date"),
	)
}
