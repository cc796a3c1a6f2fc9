package auth_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	auth "github.com/goliatone/go-loan-auth"
	"github.com/stretchr/testify/mock"
)

type testConfig struct {
	signingKey string
	keyID      string
	previous   map[string]string
	expiration time.Duration
	issuer     string
	audience   []string
}

func newTestConfig() testConfig {
	return testConfig{
		signingKey: "test-secret",
		keyID:      "test-key",
		expiration: 2 * time.Hour,
		issuer:     "test-issuer",
	}
}

func (c testConfig) GetSigningKey() string                     { return c.signingKey }
func (c testConfig) GetSigningKeyID() string                   { return c.keyID }
func (c testConfig) GetPreviousSigningKeys() map[string]string { return c.previous }
func (c testConfig) GetTokenExpiration() time.Duration         { return c.expiration }
func (c testConfig) GetIssuer() string                         { return c.issuer }
func (c testConfig) GetAudience() []string                     { return c.audience }

// MockUserStore implements auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (*auth.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) List(ctx context.Context) ([]*auth.User, error) {
	args := m.Called(ctx)
	if u, ok := args.Get(0).([]*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockNotifier implements auth.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, n auth.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// memoryUsers is an in-memory auth.UserStore enforcing unique email and cnic.
type memoryUsers struct {
	mu    sync.Mutex
	byID  map[string]auth.User
	order []string
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[string]auth.User{}}
}

func (m *memoryUsers) Create(_ context.Context, user *auth.User) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[user.ID]; ok {
		return nil, auth.ErrRecordExists
	}
	for _, u := range m.byID {
		if u.Email == user.Email || u.CNIC == user.CNIC {
			return nil, auth.ErrRecordExists
		}
	}
	m.byID[user.ID] = *user
	m.order = append(m.order, user.ID)
	out := *user
	return &out, nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, auth.ErrRecordNotFound
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, auth.ErrRecordNotFound
	}
	return &u, nil
}

func (m *memoryUsers) Update(_ context.Context, user *auth.User) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[user.ID]; !ok {
		return nil, auth.ErrRecordNotFound
	}
	m.byID[user.ID] = *user
	out := *user
	return &out, nil
}

func (m *memoryUsers) List(context.Context) ([]*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*auth.User, 0, len(m.order))
	for _, id := range m.order {
		u := m.byID[id]
		out = append(out, &u)
	}
	return out, nil
}

func (m *memoryUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []auth.Notification
	err  error
}

func (c *captureNotifier) Send(_ context.Context, n auth.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, n)
	return nil
}

func (c *captureNotifier) last() auth.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return auth.Notification{}
	}
	return c.sent[len(c.sent)-1]
}

type capturingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (s *capturingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *capturingSink) types() []auth.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auth.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

func (s *capturingSink) find(t auth.ActivityEventType) (auth.ActivityEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.EventType == t {
			return e, true
		}
	}
	return auth.ActivityEvent{}, false
}

type captureLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *captureLogger) add(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf("%s %s %v", level, msg, args))
}

func (l *captureLogger) Debug(msg string, args ...any) { l.add("DEBUG", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.add("INFO", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.add("WARN", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.add("ERROR", msg, args...) }

func (l *captureLogger) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// fixedOTP always returns the same code.
func fixedOTP(code int) auth.OTPGenerator {
	return auth.OTPGeneratorFunc(func() (int, error) { return code, nil })
}

// plainHasher skips bcrypt so flows stay fast.
type plainHasher struct{}

func (plainHasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", auth.ErrNoEmptyString
	}
	return "hashed:" + password, nil
}

func (plainHasher) ComparePasswordAndHash(password, hash string) error {
	if hash != "hashed:"+password {
		return auth.ErrMismatchedHashAndPassword
	}
	return nil
}
