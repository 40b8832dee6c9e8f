// Package engine is the boundary to the Language Model Service. Every
// component that needs a model reply depends on Service, never on a concrete
// provider client.
package engine

import (
	"context"
	"errors"
	"time"
)

// RoleSystem is the only role this application sends: all context is
// flattened into a single system message per call.
const RoleSystem = "system"

// ErrServiceCall marks a failed, errored or timed-out model call.
var ErrServiceCall = errors.New("language model call failed")

// Message is one role-tagged prompt message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Service turns an ordered list of messages into one free-form text reply.
type Service interface {
	Invoke(ctx context.Context, messages []Message) (string, error)
}

// ServiceFunc adapts a plain function to Service.
type ServiceFunc func(ctx context.Context, messages []Message) (string, error)

func (f ServiceFunc) Invoke(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}

// System wraps prompt as the single system message sent per call.
func System(prompt string) []Message {
	return []Message{{Role: RoleSystem, Content: prompt}}
}

type bounded struct {
	next    Service
	timeout time.Duration
}

// WithTimeout bounds every Invoke on svc by timeout. A non-positive timeout
// returns svc unchanged.
func WithTimeout(svc Service, timeout time.Duration) Service {
	if timeout <= 0 {
		return svc
	}
	return &bounded{next: svc, timeout: timeout}
}

func (b *bounded) Invoke(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.next.Invoke(ctx, messages)
}
