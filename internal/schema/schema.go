// Package schema validates form payloads against declarative per-field rules.
//
// Rules are validator tags on the payload struct. A Schema adds the
// human-readable message for each (field, rule) pair; rules without a message
// fall back to the validator's English translation.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/mkolodiy/go-auth-shell/internal"
)

// Messages maps a field name to the message of each of its rules.
type Messages map[string]map[string]string

// Errors maps a field name to the message of the first rule it violates.
type Errors map[string]string

func (e Errors) Valid() bool {
	return len(e) == 0
}

type Schema struct {
	validate *validator.Validate
	trans    ut.Translator
	messages Messages
}

// New builds a schema with the given messages. The messages are copied, a
// Schema never changes after construction.
func New(messages Messages) (*Schema, error) {
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("register translations: %w", err)
	}
	if err := validate.RegisterValidation("userprefix", func(fl validator.FieldLevel) bool {
		return internal.UserPrefix(fl.Field().String()).Valid()
	}); err != nil {
		return nil, fmt.Errorf("register userprefix: %w", err)
	}
	if err := validate.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		return internal.Gender(fl.Field().String()).Valid()
	}); err != nil {
		return nil, fmt.Errorf("register gender: %w", err)
	}

	copied := make(Messages, len(messages))
	for field, rules := range messages {
		copied[field] = make(map[string]string, len(rules))
		for rule, msg := range rules {
			copied[field][rule] = msg
		}
	}

	return &Schema{validate: validate, trans: trans, messages: copied}, nil
}

func MustNew(messages Messages) *Schema {
	s, err := New(messages)
	if err != nil {
		panic("schema: " + err.Error())
	}
	return s
}

// Validate checks v, a pointer to or value of a tagged struct, and returns
// the error set. The result depends on nothing but the schema and v.
func (s *Schema) Validate(v any) Errors {
	errs := Errors{}
	err := s.validate.Struct(v)
	if err == nil {
		return errs
	}

	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		panic("schema: cannot validate " + reflect.TypeOf(v).String() + ": " + err.Error())
	}
	for _, valErr := range valErrs {
		field := valErr.Field()
		if _, seen := errs[field]; seen {
			continue
		}
		errs[field] = s.message(valErr)
	}
	return errs
}

func (s *Schema) message(valErr validator.FieldError) string {
	if msg, ok := s.messages[valErr.Field()][valErr.Tag()]; ok {
		return msg
	}
	return valErr.Translate(s.trans)
}
