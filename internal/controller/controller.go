// Package controller owns a form's value bag and runs its submissions.
package controller

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/mkolodiy/go-auth-shell/internal"
	"github.com/mkolodiy/go-auth-shell/internal/schema"
)

var (
	ErrInvalid          = errors.New("form values are invalid")
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrAlreadySubmitted = errors.New("form was already submitted")

	errAborted = errors.New("submit handler did not return")
)

// SubmissionError is returned by Submit when the submit handler fails.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit form: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

type Phase int

const (
	Editing Phase = iota
	Submitting
	SettledSuccess
	SettledError
)

func (p Phase) String() string {
	switch p {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case SettledSuccess:
		return "settled-success"
	case SettledError:
		return "settled-error"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Values is the value bag: field name to current value.
type Values map[string]string

func (v Values) urlValues() url.Values {
	out := make(url.Values, len(v))
	for field, value := range v {
		out.Set(field, value)
	}
	return out
}

// Field is the bind handle for one input.
type Field struct {
	Name  string
	Value string
	Error string
}

type Handler[T any] func(ctx context.Context, payload T) error

type Controller[T any] struct {
	schema *schema.Schema

	mu      sync.Mutex
	values  Values
	errs    schema.Errors
	phase   Phase
	lastErr error
}

// New mounts a controller whose value bag starts as a copy of defaults.
// Only fields present in defaults can be set.
func New[T any](s *schema.Schema, defaults map[string]string) *Controller[T] {
	values := make(Values, len(defaults))
	for field, value := range defaults {
		values[field] = value
	}
	return &Controller[T]{
		schema: s,
		values: values,
		errs:   schema.Errors{},
	}
}

func (c *Controller[T]) Bind(field string) Field {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Field{Name: field, Value: c.values[field], Error: c.errs[field]}
}

// Set changes one field of the value bag. Unknown fields are ignored.
// Editing a form whose last submission failed returns it to Editing.
func (c *Controller[T]) Set(field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[field]; !ok {
		return
	}
	c.values[field] = value
	if c.phase == SettledError {
		c.phase = Editing
	}
}

// SetAll sets every known field present in values.
func (c *Controller[T]) SetAll(values url.Values) {
	for field := range values {
		c.Set(field, values.Get(field))
	}
}

func (c *Controller[T]) Values() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(Values, len(c.values))
	for field, value := range c.values {
		out[field] = value
	}
	return out
}

func (c *Controller[T]) Errors() schema.Errors {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(schema.Errors, len(c.errs))
	for field, msg := range c.errs {
		out[field] = msg
	}
	return out
}

func (c *Controller[T]) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Err returns the cause of the last failed submission, if the form is in
// SettledError.
func (c *Controller[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != SettledError {
		return nil
	}
	return c.lastErr
}

// Submit validates the value bag and, when valid, awaits handler with the
// decoded payload. The handler is never called for an invalid bag or while a
// previous submission is in flight.
func (c *Controller[T]) Submit(ctx context.Context, handler Handler[T]) error {
	c.mu.Lock()
	switch c.phase {
	case Submitting:
		c.mu.Unlock()
		return ErrSubmitInProgress
	case SettledSuccess:
		c.mu.Unlock()
		return ErrAlreadySubmitted
	}

	var zero T
	payload, err := internal.PopulateForm(zero, c.values.urlValues())
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("decode form values: %w", err)
	}

	c.errs = c.schema.Validate(payload)
	if !c.errs.Valid() {
		c.phase = Editing
		c.mu.Unlock()
		return ErrInvalid
	}

	c.phase = Submitting
	c.lastErr = nil
	c.mu.Unlock()

	// Settle even when handler panics, or the lock would never be released.
	err = errAborted
	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.phase = SettledError
			c.lastErr = err
			return
		}
		c.phase = SettledSuccess
	}()

	if err = handler(ctx, payload); err != nil {
		return &SubmissionError{Err: err}
	}
	return nil
}
