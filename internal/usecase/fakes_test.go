package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	uuid "github.com/google/uuid"

	"github.com/Rista10/event-planner-application/internal/core/domain"
	"github.com/Rista10/event-planner-application/internal/core/port"
	"github.com/Rista10/event-planner-application/internal/infra/security"
	"github.com/Rista10/event-planner-application/internal/repository"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type memUserRepo struct {
	mu            sync.Mutex
	users         map[string]domain.User
	forceConflict bool
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forceConflict {
		return nil, repository.ErrConflict
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, repository.ErrConflict
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.ID] = user
	return &user, nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == strings.ToLower(strings.TrimSpace(email)) {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) SetEmailVerified(_ context.Context, id string, verified bool) error {
	return r.update(id, func(u *domain.User) { u.IsEmailVerified = verified })
}

func (r *memUserRepo) SetTwoFactorEnabled(_ context.Context, id string, enabled bool) error {
	return r.update(id, func(u *domain.User) { u.TwoFactorEnabled = enabled })
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id string, hash string) error {
	return r.update(id, func(u *domain.User) { u.PasswordHash = hash })
}

func (r *memUserRepo) update(id string, fn func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&user)
	r.users[id] = user
	return nil
}

func (r *memUserRepo) delete(id string) {
	r.mu.Lock()
	delete(r.users, id)
	r.mu.Unlock()
}

// memTokenRepo applies the same active-token filters as the SQL repository.
type memTokenRepo struct {
	mu     sync.Mutex
	tokens []domain.AuthToken
}

func (r *memTokenRepo) Create(_ context.Context, token domain.AuthToken) (*domain.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = append(r.tokens, token)
	return &token, nil
}

func (r *memTokenRepo) FindActiveByHash(_ context.Context, hash string, tokenType domain.TokenType, at time.Time) (*domain.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.TokenHash == hash && token.Type == tokenType && token.IsActive(at) {
			t := token
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTokenRepo) FindLatestActiveByUser(_ context.Context, userID string, tokenType domain.TokenType, at time.Time) (*domain.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.AuthToken
	for i := range r.tokens {
		token := r.tokens[i]
		if token.UserID != userID || token.Type != tokenType || !token.IsActive(at) {
			continue
		}
		if latest == nil || !token.CreatedAt.Before(latest.CreatedAt) {
			latest = &token
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return latest, nil
}

func (r *memTokenRepo) MarkUsed(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tokens {
		if r.tokens[i].ID == id && r.tokens[i].Consume(at) {
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memTokenRepo) InvalidateByUserAndType(_ context.Context, userID string, tokenType domain.TokenType, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.tokens {
		if r.tokens[i].UserID == userID && r.tokens[i].Type == tokenType && r.tokens[i].Consume(at) {
			n++
		}
	}
	return n, nil
}

func (r *memTokenRepo) activeCount(userID string, tokenType domain.TokenType, at time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, token := range r.tokens {
		if token.UserID == userID && token.Type == tokenType && token.IsActive(at) {
			n++
		}
	}
	return n
}

type plainHasher struct{}

func (plainHasher) Hash(secret string) (string, error) { return "plain:" + secret, nil }

func (plainHasher) Verify(secret, encoded string) (bool, error) {
	return encoded == "plain:"+secret, nil
}

type sentMail struct {
	Kind  string
	To    string
	Name  string
	Value string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) record(kind, to, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{Kind: kind, To: to, Name: name, Value: value})
	return m.err
}

func (m *recordingMailer) SendVerificationEmail(_ context.Context, to, name, token string) error {
	return m.record("verification", to, name, token)
}

func (m *recordingMailer) SendPasswordResetEmail(_ context.Context, to, name, token string) error {
	return m.record("reset", to, name, token)
}

func (m *recordingMailer) SendTwoFactorCode(_ context.Context, to, name, code string) error {
	return m.record("two_factor", to, name, code)
}

func (m *recordingMailer) last(kind string) (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].Kind == kind {
			return m.sent[i], true
		}
	}
	return sentMail{}, false
}

func (m *recordingMailer) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sent {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []any
	err    error
}

func (p *recordingPublisher) add(event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, e domain.UserRegisteredEvent) error {
	return p.add(e)
}

func (p *recordingPublisher) PublishEmailVerified(_ context.Context, e domain.EmailVerifiedEvent) error {
	return p.add(e)
}

func (p *recordingPublisher) PublishPasswordResetRequested(_ context.Context, e domain.PasswordResetRequestedEvent) error {
	return p.add(e)
}

func (p *recordingPublisher) PublishPasswordChanged(_ context.Context, e domain.PasswordChangedEvent) error {
	return p.add(e)
}

func (p *recordingPublisher) PublishTwoFactorToggled(_ context.Context, e domain.TwoFactorToggledEvent) error {
	return p.add(e)
}

type countingTransactor struct {
	users  port.UserRepository
	tokens port.TokenRepository
	calls  int
}

func (t *countingTransactor) WithinTx(ctx context.Context, fn func(context.Context, port.TxRepositories) error) error {
	t.calls++
	return fn(ctx, port.TxRepositories{Users: t.users, Tokens: t.tokens})
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
	failures map[string]int
}

func (m *recordingMetrics) ObserveDeliveryFailure(channel, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures == nil {
		m.failures = map[string]int{}
	}
	m.failures[channel+":"+kind]++
}

func (m *recordingMetrics) outcome(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[key]
}

func (m *recordingMetrics) failure(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[key]
}

func (m *recordingMetrics) ObserveAuthOperation(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = map[string]int{}
	}
	m.outcomes[operation+":"+outcome]++
}

type authFixture struct {
	clock    *testClock
	users    *memUserRepo
	tokens   *memTokenRepo
	mailer   *recordingMailer
	events   *recordingPublisher
	tx       *countingTransactor
	metrics  *recordingMetrics
	sessions *security.SessionTokenManager
	svc      *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		clock:   newTestClock(),
		users:   newMemUserRepo(),
		tokens:  &memTokenRepo{},
		mailer:  &recordingMailer{},
		events:  &recordingPublisher{},
		metrics: &recordingMetrics{},
	}
	f.tx = &countingTransactor{users: f.users, tokens: f.tokens}

	sessions, err := security.NewSessionTokenManager(security.SessionTokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewSessionTokenManager returned error: %v", err)
	}
	f.sessions = sessions.WithClock(f.clock.Now)

	tokenSvc := NewTokenService(f.tokens, plainHasher{}).WithClock(f.clock.Now)
	f.svc = NewAuthService(
		f.users,
		tokenSvc,
		plainHasher{},
		security.NewPasswordPolicy(0),
		f.mailer,
		f.sessions,
		f.events,
		f.tx,
		TokenTTLs{},
	).WithClock(f.clock.Now).WithMetrics(f.metrics)

	return f
}

func (f *authFixture) signup(t *testing.T, name, email string) *AuthResult {
	t.Helper()
	res, err := f.svc.Signup(context.Background(), SignupInput{Name: name, Email: email, Password: "Secret123"})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	return res
}
