// Package aitest provides a scripted ai.Generator for tests.
package aitest

import (
	"context"
	"errors"
	"sync"

	"github.com/spigell/cv-matcher/internal/ai"
)

// Call is one recorded GenerateContent invocation.
type Call struct {
	System  string
	Message string
}

// Response is one scripted reply.
type Response struct {
	Text string
	Err  error
}

// Stub replies with Respond when set, otherwise pops Responses in order.
type Stub struct {
	Respond   func(ctx context.Context, call Call) (string, error)
	Responses []Response
	ModelName string

	mu    sync.Mutex
	calls []Call
}

var _ ai.Generator = (*Stub)(nil)

// GenerateContent records the call and returns the scripted reply.
func (s *Stub) GenerateContent(ctx context.Context, system, message string) (string, error) {
	call := Call{System: system, Message: message}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	respond := s.Respond
	var next *Response
	if respond == nil && len(s.Responses) > 0 {
		next = &s.Responses[0]
		s.Responses = s.Responses[1:]
	}
	s.mu.Unlock()

	if respond != nil {
		return respond(ctx, call)
	}
	if next == nil {
		return "", errors.New("aitest: no scripted response left")
	}
	return next.Text, next.Err
}

// Model returns ModelName or "stub".
func (s *Stub) Model() string {
	if s.ModelName == "" {
		return "stub"
	}
	return s.ModelName
}

// Calls returns a copy of the recorded calls.
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount returns the number of recorded calls.
func (s *Stub) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
