// Package credentials holds the API key selected for the session and the hook used to ask
// the user for a different one.
package credentials

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrNoKey = errors.New("no API key selected")

// Hook checks whether a key is selected and prompts the user to select one.
type Hook interface {
	HasSelectedKey(ctx context.Context) bool
	SelectKey(ctx context.Context) error
}

// Store is the session's current key. It satisfies ai.KeySource.
type Store struct {
	mu  sync.RWMutex
	key string
}

func NewStore(key string) *Store {
	return &Store{key: strings.TrimSpace(key)}
}

func (s *Store) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key
}

func (s *Store) Set(key string) {
	s.mu.Lock()
	s.key = strings.TrimSpace(key)
	s.mu.Unlock()
}

// PromptFunc asks the user for a key.
type PromptFunc func(ctx context.Context) (string, error)

// Prompter is a Hook that asks through prompt and stores the answer.
type Prompter struct {
	Store  *Store
	Prompt PromptFunc
}

func (p *Prompter) HasSelectedKey(ctx context.Context) bool {
	return p.Store.APIKey() != ""
}

func (p *Prompter) SelectKey(ctx context.Context) error {
	if p.Prompt == nil {
		return ErrNoKey
	}
	key, err := p.Prompt(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return ErrNoKey
	}
	p.Store.Set(key)
	return nil
}

// EnsureKey prompts for a key when none is selected. It never fails the caller: the request
// proceeds and the adapter reports the authentication failure if the key is still missing.
func EnsureKey(ctx context.Context, h Hook) {
	if h == nil || h.HasSelectedKey(ctx) {
		return
	}
	_ = h.SelectKey(ctx)
}
