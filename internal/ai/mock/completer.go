package mock

import (
	"context"
	"sync/atomic"
)

// Completer is a test double for ai.Completer. By default it returns a fixed
// answer; Calls counts invocations so tests can assert the generation path
// was (or was not) taken. Safe for concurrent use.
type Completer struct {
	// CompleteFunc overrides Complete when set.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	calls atomic.Int64
}

// NewCompleter returns a completer returning a canned answer.
func NewCompleter() *Completer {
	return &Completer{}
}

// Complete generates text for prompt.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	c.calls.Add(1)
	if c.CompleteFunc != nil {
		return c.CompleteFunc(ctx, prompt)
	}
	return "mock answer", nil
}

// Calls returns how many times Complete was invoked.
func (c *Completer) Calls() int { return int(c.calls.Load()) }
