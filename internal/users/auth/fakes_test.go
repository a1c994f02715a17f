// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/yomira-accounts/internal/notify"
	"github.com/taibuivan/yomira-accounts/internal/platform/apperr"
	"github.com/taibuivan/yomira-accounts/internal/platform/sec"
	"github.com/taibuivan/yomira-accounts/internal/users/account"
	"github.com/taibuivan/yomira-accounts/internal/users/auth"
)

// # Session Fake

type memorySessions struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]*auth.Session
	failAll  error
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: make(map[string]*auth.Session)}
}

func (store *memorySessions) Create(_ context.Context, accountID string, persistent bool, ttl time.Duration) (*auth.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.seq++
	now := time.Now().UTC()
	session := &auth.Session{
		ID:         "session-" + strconv.Itoa(store.seq),
		AccountID:  accountID,
		Persistent: persistent,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	store.sessions[session.ID] = session
	copied := *session
	return &copied, nil
}

func (store *memorySessions) Resolve(_ context.Context, id string) (*auth.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	session, ok := store.sessions[id]
	if !ok {
		return nil, apperr.NotFound("Session")
	}
	copied := *session
	return &copied, nil
}

func (store *memorySessions) Revoke(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.sessions, id)
	return nil
}

func (store *memorySessions) RevokeAll(_ context.Context, accountID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.failAll != nil {
		return store.failAll
	}
	for id, session := range store.sessions {
		if session.AccountID == accountID {
			delete(store.sessions, id)
		}
	}
	return nil
}

func (store *memorySessions) count(accountID string) int {
	store.mu.Lock()
	defer store.mu.Unlock()

	n := 0
	for _, session := range store.sessions {
		if session.AccountID == accountID {
			n++
		}
	}
	return n
}

// # Throttle Fake

type memoryThrottle struct {
	mu        sync.Mutex
	threshold int
	failures  map[string]int
	broken    bool
}

func newMemoryThrottle(threshold int) *memoryThrottle {
	return &memoryThrottle{threshold: threshold, failures: make(map[string]int)}
}

func (throttle *memoryThrottle) Locked(_ context.Context, email string) (bool, time.Duration, error) {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()

	if throttle.broken {
		return false, 0, errors.New("redis: connection refused")
	}
	return throttle.failures[email] >= throttle.threshold, 90 * time.Second, nil
}

func (throttle *memoryThrottle) RecordFailure(_ context.Context, email string) error {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()

	throttle.failures[email]++
	return nil
}

func (throttle *memoryThrottle) Clear(_ context.Context, email string) error {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()

	delete(throttle.failures, email)
	return nil
}

// # Outbox

// outbox records every message handed to the sender.
type outbox struct {
	mu       sync.Mutex
	messages []notify.Message
	fail     map[notify.Template]error
	gate     chan struct{}
}

func (box *outbox) Send(_ context.Context, message notify.Message) error {
	box.mu.Lock()
	gate := box.gate
	box.mu.Unlock()
	if gate != nil {
		<-gate
	}

	box.mu.Lock()
	defer box.mu.Unlock()

	if err := box.fail[message.Template]; err != nil {
		return err
	}
	box.messages = append(box.messages, message)
	return nil
}

func (box *outbox) failTemplate(template notify.Template, err error) {
	box.mu.Lock()
	defer box.mu.Unlock()

	if box.fail == nil {
		box.fail = make(map[notify.Template]error)
	}
	box.fail[template] = err
}

// hold parks every later Send until the returned release is called.
func (box *outbox) hold() (release func()) {
	box.mu.Lock()
	defer box.mu.Unlock()

	gate := make(chan struct{})
	box.gate = gate
	return func() { close(gate) }
}

func (box *outbox) sent(template notify.Template) []notify.Message {
	box.mu.Lock()
	defer box.mu.Unlock()

	var matched []notify.Message
	for _, message := range box.messages {
		if message.Template == template {
			matched = append(matched, message)
		}
	}
	return matched
}

func (box *outbox) last(t *testing.T, template notify.Template) notify.Message {
	t.Helper()
	matched := box.sent(template)
	require.NotEmpty(t, matched, "no %s message sent", template)
	return matched[len(matched)-1]
}

// # Harness

type harness struct {
	service    *auth.Service
	accounts   *account.MemoryStore
	sessions   *memorySessions
	throttle   *memoryThrottle
	outbox     *outbox
	dispatcher *notify.Dispatcher
	clock      *clock
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// # Store Wrappers

// contextBoundStore fails writes made with a finished context, like a
// database driver would.
type contextBoundStore struct {
	*account.MemoryStore
}

func (store contextBoundStore) Update(context context.Context, acc *account.Account, fields ...account.Field) error {
	if err := context.Err(); err != nil {
		return err
	}
	return store.MemoryStore.Update(context, acc, fields...)
}

// lastLoginFailingStore rejects every write that touches last_login.
type lastLoginFailingStore struct {
	*account.MemoryStore
}

func (store lastLoginFailingStore) Update(context context.Context, acc *account.Account, fields ...account.Field) error {
	for _, field := range fields {
		if field == account.FieldLastLoginAt {
			return errors.New("postgres: connection reset")
		}
	}
	return store.MemoryStore.Update(context, acc, fields...)
}

// # Harness Construction

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, nil)
}

// newHarnessWith builds a harness whose service sees the memory store
// through wrap. h.accounts stays the unwrapped store.
func newHarnessWith(t *testing.T, wrap func(*account.MemoryStore) account.Store) *harness {
	t.Helper()

	h := &harness{
		accounts: account.NewMemoryStore(),
		sessions: newMemorySessions(),
		throttle: newMemoryThrottle(5),
		outbox:   &outbox{},
		clock:    &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	h.dispatcher = notify.NewDispatcher(h.outbox, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = h.dispatcher.Close(context.Background()) })

	var accounts account.Store = h.accounts
	if wrap != nil {
		accounts = wrap(h.accounts)
	}

	h.service = auth.NewService(auth.Dependencies{
		Accounts: accounts,
		Sessions: h.sessions,
		Throttle: h.throttle,
		Notifier: h.dispatcher,
		Hasher:   sec.NewBcryptHasher(bcrypt.MinCost),
		Settings: auth.Settings{PublicBaseURL: "https://accounts.example.com/"},
		Now:      h.clock.Now,
	})
	return h
}

// drain waits for background deliveries.
func (h *harness) drain(t *testing.T) {
	t.Helper()
	require.NoError(t, h.dispatcher.Close(context.Background()))
}

const strongPassword = "Secure#2025"

func registration(email string) auth.RegisterInput {
	return auth.RegisterInput{
		Email:                email,
		FirstName:            "Alice",
		LastName:             "Liddell",
		Password:             strongPassword,
		PasswordConfirmation: strongPassword,
		TermsAccepted:        true,
	}
}

// registerVerified registers email and consumes its verification token.
func (h *harness) registerVerified(t *testing.T, email string) *account.Account {
	t.Helper()
	result, err := h.service.Register(context.Background(), registration(email))
	require.NoError(t, err)

	_, err = h.service.Verify(context.Background(), *result.Account.VerificationToken)
	require.NoError(t, err)

	acc, err := h.accounts.FindByID(context.Background(), result.Account.ID)
	require.NoError(t, err)
	return acc
}
