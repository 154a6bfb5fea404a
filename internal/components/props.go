package components

import (
	"github.com/a-h/templ"
	"github.com/mkolodiy/go-auth-shell/internal"
)

type FieldProps struct {
	Name         string
	Label        string
	Type         string
	Value        string
	ErrorMessage string
}

type SelectProps struct {
	Name         string
	Label        string
	Value        string
	Options      []internal.Option
	ErrorMessage string
}

type FormProps struct {
	Action  string
	FormID  string
	Submit  string
	Message string
	Footer  templ.Component
}

type ToastType string

const (
	ToastError ToastType = "error"
	ToastInfo  ToastType = "info"
)

type ToastProps struct {
	Message string
	Type    ToastType
}

func inputType(t string) string {
	if t == "" {
		return "text"
	}
	return t
}

func toastClass(t ToastType) string {
	if t == "" {
		t = ToastInfo
	}
	return "toast-" + string(t)
}
