package llm

import (
	"context"
	"errors"
	"sync"
)

// Client generates a completion for a single prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrNotConfigured is returned when no provider credential is configured.
var ErrNotConfigured = errors.New("llm provider not configured")

// Factory builds a provider client.
type Factory func(ctx context.Context) (Client, error)

// Lazy builds its client on first use and shares it afterwards. A failed
// build is remembered and returned on every call.
type Lazy struct {
	factory Factory

	once   sync.Once
	client Client
	err    error
}

// NewLazy wraps factory in a Lazy client.
func NewLazy(factory Factory) *Lazy {
	return &Lazy{factory: factory}
}

// Generate builds the client if needed and forwards the prompt.
func (l *Lazy) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := l.get()
	if err != nil {
		return "", err
	}
	return client.Generate(ctx, prompt)
}

func (l *Lazy) get() (Client, error) {
	l.once.Do(func() {
		if l.factory == nil {
			l.err = ErrNotConfigured
			return
		}
		// Detached context: the handle outlives the request that builds it.
		l.client, l.err = l.factory(context.Background())
		if l.err == nil && l.client == nil {
			l.err = ErrNotConfigured
		}
	})
	return l.client, l.err
}

var _ Client = (*Lazy)(nil)
