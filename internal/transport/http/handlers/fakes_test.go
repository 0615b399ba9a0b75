package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	uuid "github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/Rista10/event-planner-application/internal/core/domain"
	"github.com/Rista10/event-planner-application/internal/infra/kafka"
	"github.com/Rista10/event-planner-application/internal/infra/security"
	"github.com/Rista10/event-planner-application/internal/repository"
	"github.com/Rista10/event-planner-application/internal/transport/http/middleware"
	"github.com/Rista10/event-planner-application/internal/usecase"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (r *memUsers) Create(_ context.Context, user domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, repository.ErrConflict
		}
	}
	user.ID = uuid.NewString()
	r.users[user.ID] = user
	return &user, nil
}

func (r *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUsers) SetEmailVerified(_ context.Context, id string, v bool) error {
	return r.update(id, func(u *domain.User) { u.IsEmailVerified = v })
}

func (r *memUsers) SetTwoFactorEnabled(_ context.Context, id string, v bool) error {
	return r.update(id, func(u *domain.User) { u.TwoFactorEnabled = v })
}

func (r *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	return r.update(id, func(u *domain.User) { u.PasswordHash = hash })
}

func (r *memUsers) update(id string, fn func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	r.users[id] = u
	return nil
}

type memTokens struct {
	mu     sync.Mutex
	tokens []domain.AuthToken
}

func (r *memTokens) Create(_ context.Context, t domain.AuthToken) (*domain.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = append(r.tokens, t)
	return &t, nil
}

func (r *memTokens) FindActiveByHash(_ context.Context, hash string, tt domain.TokenType, at time.Time) (*domain.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == hash && t.Type == tt && t.IsActive(at) {
			found := t
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTokens) FindLatestActiveByUser(_ context.Context, userID string, tt domain.TokenType, at time.Time) (*domain.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.tokens) - 1; i >= 0; i-- {
		t := r.tokens[i]
		if t.UserID == userID && t.Type == tt && t.IsActive(at) {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTokens) MarkUsed(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tokens {
		if r.tokens[i].ID == id && r.tokens[i].Consume(at) {
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memTokens) InvalidateByUserAndType(_ context.Context, userID string, tt domain.TokenType, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.tokens {
		if r.tokens[i].UserID == userID && r.tokens[i].Type == tt && r.tokens[i].Consume(at) {
			n++
		}
	}
	return n, nil
}

type capturedMail struct {
	kind, to, value string
}

type captureMailer struct {
	mu   sync.Mutex
	sent []capturedMail
}

func (m *captureMailer) add(kind, to, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, capturedMail{kind: kind, to: to, value: value})
	return nil
}

func (m *captureMailer) SendVerificationEmail(_ context.Context, to, _, token string) error {
	return m.add("verification", to, token)
}

func (m *captureMailer) SendPasswordResetEmail(_ context.Context, to, _, token string) error {
	return m.add("reset", to, token)
}

func (m *captureMailer) SendTwoFactorCode(_ context.Context, to, _, code string) error {
	return m.add("two_factor", to, code)
}

func (m *captureMailer) last(kind string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].kind == kind {
			return m.sent[i].value
		}
	}
	return ""
}

type apiFixture struct {
	router *gin.Engine
	mailer *captureMailer
	users  *memUsers
}

type fixtureOptions struct {
	twoFactor bool
	secure    bool
}

func newAPIFixture(t *testing.T, opts fixtureOptions) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &memUsers{users: map[string]domain.User{}}
	tokens := &memTokens{}
	mailer := &captureMailer{}
	log := zaptest.NewLogger(t)

	sessions, err := security.NewSessionTokenManager(security.SessionTokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewSessionTokenManager returned error: %v", err)
	}

	hasher, err := security.NewBcryptHasher(4)
	if err != nil {
		t.Fatalf("NewBcryptHasher returned error: %v", err)
	}
	svc := usecase.NewAuthService(
		users,
		usecase.NewTokenService(tokens, hasher),
		hasher,
		security.NewPasswordPolicy(0),
		mailer,
		sessions,
		kafka.NewStubPublisher(log),
		nil,
		usecase.TokenTTLs{},
	).WithLogger(log).WithTwoFactor(opts.twoFactor)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.NoRoute(middleware.NoRoute())
	handler := NewAuthHandler(svc, NewErrorResponder(log, true), CookieConfig{Secure: opts.secure})
	handler.RegisterRoutes(router.Group("/api/auth"), AuthRouteOptions{
		RequireAuth: middleware.RequireAuth(sessions),
		TwoFactor:   opts.twoFactor,
	})

	return &apiFixture{router: router, mailer: mailer, users: users}
}

type apiResponse struct {
	code    int
	body    []byte
	cookies []*http.Cookie
	env     struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *APIError       `json:"error"`
	}
}

func (f *apiFixture) do(t *testing.T, method, path, body string, mutate ...func(*http.Request)) *apiResponse {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	res := &apiResponse{code: rr.Code, body: rr.Body.Bytes(), cookies: rr.Result().Cookies()}
	if len(res.body) > 0 {
		if err := json.Unmarshal(res.body, &res.env); err != nil {
			t.Fatalf("response is not an envelope: %s", res.body)
		}
	}
	return res
}

func (r *apiResponse) data(t *testing.T, dst any) {
	t.Helper()
	if err := json.Unmarshal(r.env.Data, dst); err != nil {
		t.Fatalf("failed to decode data %s: %v", r.env.Data, err)
	}
}

func (r *apiResponse) refreshCookie() *http.Cookie {
	for _, c := range r.cookies {
		if c.Name == RefreshCookieName {
			return c
		}
	}
	return nil
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value}) }
}

func withBearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}
