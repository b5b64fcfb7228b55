package hunt

import (
	"sync"

	"github.com/google/uuid"
)

// TokenSource mints idempotency tokens. One token covers one logical commit
// and stays stable across every retry of that commit.
type TokenSource interface {
	Next() string
}

// UUIDTokens issues time-ordered UUIDv7 tokens.
type UUIDTokens struct{}

func (UUIDTokens) Next() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedTokens replays a canned token sequence, sticking on the last one.
// Used by tests that need predictable tokens.
type FixedTokens struct {
	Tokens []string

	mu   sync.Mutex
	next int
}

func (f *FixedTokens) Next() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Tokens) == 0 {
		return ""
	}
	token := f.Tokens[f.next]
	if f.next < len(f.Tokens)-1 {
		f.next++
	}
	return token
}
