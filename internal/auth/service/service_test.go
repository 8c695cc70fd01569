package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/bookly/internal/auth/blocklist"
	"github.com/aussiebroadwan/bookly/internal/auth/domain"
	"github.com/aussiebroadwan/bookly/internal/auth/mailer"
	"github.com/aussiebroadwan/bookly/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/bookly/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// captureQueue records enqueued mail instead of delivering it.
type captureQueue struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (q *captureQueue) Enqueue(msg mailer.Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, msg)
}

func (q *captureQueue) messages() []mailer.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]mailer.Message, len(q.sent))
	copy(out, q.sent)
	return out
}

// env wires the full service stack against an in-memory store and blocklist
// with a controllable clock.
type env struct {
	store     *sqlite.Store
	blocklist *blocklist.MemoryBlocklist
	codec     *jwtx.Codec
	mail      *captureQueue

	auth    *Authenticator
	account *AccountService
	guard   *Guard

	mu  sync.Mutex
	now time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	codec, err := jwtx.NewCodec([]byte("test-secret-0123456789"), "bookly-test")
	require.NoError(t, err)

	e := &env{
		store:     s,
		blocklist: blocklist.NewMemoryBlocklist(),
		codec:     codec,
		mail:      &captureQueue{},
		now:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	codec.Now = e.clock
	e.blocklist.Now = e.clock

	e.auth = &Authenticator{
		Codec:     codec,
		Store:     s,
		Blocklist: e.blocklist,
		Now:       e.clock,
	}
	e.account = &AccountService{
		Store:   s,
		Codec:   codec,
		Mail:    e.mail,
		BaseURL: "http://localhost:8080",
	}
	e.guard = &Guard{
		Codec:     codec,
		Blocklist: e.blocklist,
		Store:     s,
	}

	return e
}

func (e *env) clock() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

func (e *env) advance(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = e.now.Add(d)
}

func validSignup() SignupInput {
	return SignupInput{
		Email:     "alice@example.com",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Example",
		Password:  "sw0rdfish",
	}
}

// signup creates an account and returns it.
func (e *env) signup(t *testing.T) domain.User {
	t.Helper()
	user, err := e.account.Signup(context.Background(), validSignup())
	require.NoError(t, err)
	return user
}
