package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Settled reports whether s is a terminal status.
func (s Status) Settled() bool {
	return s == StatusSuccess || s == StatusError
}

type State[D any] struct {
	Status      Status
	Data        D
	Err         error
	SubmittedAt time.Time
	Failures    int
}

type MutationFunc[V, D any] func(ctx context.Context, vars V) (D, error)

type MutationOption[V, D any] func(*Mutation[V, D])

// OnSuccess registers a callback run after fn resolves, before Execute returns.
func OnSuccess[V, D any](fn func(data D, vars V)) MutationOption[V, D] {
	return func(m *Mutation[V, D]) {
		m.onSuccess = fn
	}
}

// OnError registers a callback run after fn fails, before Execute returns.
func OnError[V, D any](fn func(err error, vars V)) MutationOption[V, D] {
	return func(m *Mutation[V, D]) {
		m.onError = fn
	}
}

// Mutation wraps a single outbound call. Every Execute issues a fresh call;
// concurrent Executes are not serialized.
type Mutation[V, D any] struct {
	id     string
	key    string
	client *Client
	fn     MutationFunc[V, D]

	onSuccess func(D, V)
	onError   func(error, V)

	mu    sync.Mutex
	state State[D]
}

func NewMutation[V, D any](client *Client, key string, fn MutationFunc[V, D], opts ...MutationOption[V, D]) *Mutation[V, D] {
	m := &Mutation[V, D]{
		id:     uuid.NewString(),
		key:    key,
		client: client,
		fn:     fn,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mutation[V, D]) ID() string  { return m.id }
func (m *Mutation[V, D]) Key() string { return m.key }

func (m *Mutation[V, D]) State() State[D] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reset returns the mutation to idle.
func (m *Mutation[V, D]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State[D]{}
}

func (m *Mutation[V, D]) Execute(ctx context.Context, vars V) (D, error) {
	m.mu.Lock()
	m.state = State[D]{
		Status:      StatusPending,
		SubmittedAt: time.Now(),
		Failures:    m.state.Failures,
	}
	m.mu.Unlock()
	m.client.started(m.id, m.key)

	data, err := m.fn(ctx, vars)

	m.mu.Lock()
	if err != nil {
		m.state.Status = StatusError
		m.state.Err = err
		m.state.Failures++
	} else {
		m.state.Status = StatusSuccess
		m.state.Data = data
	}
	status := m.state.Status
	m.mu.Unlock()
	m.client.finished(m.id, m.key, status)

	if err != nil {
		if m.onError != nil {
			m.onError(err, vars)
		}
		var zero D
		return zero, err
	}
	if m.onSuccess != nil {
		m.onSuccess(data, vars)
	}
	return data, nil
}
