package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/boltapp/marketplace-api/internal/core/domain"
	"github.com/boltapp/marketplace-api/internal/core/ports"
	"github.com/boltapp/marketplace-api/internal/token"
)

// stubUserSource implements ports.AuthService for middleware tests; only
// GetUserByID is exercised here.
type stubUserSource struct {
	getUserFn func(ctx context.Context, id string) (*domain.User, error)
}

func (s *stubUserSource) Register(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
	panic("not used")
}
func (s *stubUserSource) Login(context.Context, string, string) (*ports.AuthResult, error) {
	panic("not used")
}
func (s *stubUserSource) Refresh(context.Context, string) (*ports.TokenPair, error) {
	panic("not used")
}
func (s *stubUserSource) VerifyEmail(context.Context, string) error { panic("not used") }
func (s *stubUserSource) RequestPasswordReset(context.Context, string) error {
	panic("not used")
}
func (s *stubUserSource) ResetPassword(context.Context, string, string) error {
	panic("not used")
}
func (s *stubUserSource) ChangePassword(context.Context, string, string, string) error {
	panic("not used")
}
func (s *stubUserSource) UpdateProfile(context.Context, ports.UpdateProfileInput) (*domain.User, error) {
	panic("not used")
}
func (s *stubUserSource) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.getUserFn(ctx, id)
}

func newTestCodec(t *testing.T) *token.Codec {
	t.Helper()
	codec, err := token.New("test-secret", "marketplace-api", token.TTLConfig{
		Access:        time.Hour,
		Refresh:       time.Hour,
		VerifyEmail:   time.Hour,
		ResetPassword: time.Hour,
	})
	if err != nil {
		t.Fatalf("token.New: %v", err)
	}
	return codec
}

func activeUser(id string) *domain.User {
	return &domain.User{
		ID:     id,
		Role:   domain.RoleClient,
		Email:  id + "@example.com",
		Status: domain.StatusActive,
	}
}

func userSourceWith(user *domain.User) *stubUserSource {
	return &stubUserSource{
		getUserFn: func(_ context.Context, id string) (*domain.User, error) {
			if user != nil && user.ID == id {
				return user, nil
			}
			return nil, nil
		},
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	e := echo.New()
	codec := newTestCodec(t)
	user := activeUser("user_1")

	signed, err := codec.Issue(token.PurposeAccess, "user_1", token.Extra{Email: user.Email, Role: string(user.Role)})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Authenticate(codec, userSourceWith(user), zerolog.Nop())(func(c echo.Context) error {
		called = true
		got, ok := CurrentUser(c)
		if !ok || got.ID != "user_1" {
			t.Fatalf("expected user in context, got %+v", got)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	codec := newTestCodec(t)

	refresh, err := codec.Issue(token.PurposeRefresh, "user_1", token.Extra{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	access, err := codec.Issue(token.PurposeAccess, "user_1", token.Extra{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	blocked := activeUser("user_1")
	blocked.Status = domain.StatusSuspended

	cases := []struct {
		name   string
		header string
		source *stubUserSource
	}{
		{"missing header", "", userSourceWith(activeUser("user_1"))},
		{"wrong scheme", "Token " + access, userSourceWith(activeUser("user_1"))},
		{"garbage token", "Bearer garbage", userSourceWith(activeUser("user_1"))},
		{"refresh token on access route", "Bearer " + refresh, userSourceWith(activeUser("user_1"))},
		{"user deleted", "Bearer " + access, userSourceWith(nil)},
		{"user blocked", "Bearer " + access, userSourceWith(blocked)},
	}

	for _, tc := range cases {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set(echo.HeaderAuthorization, tc.header)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := Authenticate(codec, tc.source, zerolog.Nop())(func(c echo.Context) error {
			t.Fatalf("%s: should not reach next", tc.name)
			return nil
		})

		err := handler(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 HTTPError, got %v", tc.name, err)
		}
	}
}

func TestAuthenticate_StoreFailureIsNot401(t *testing.T) {
	e := echo.New()
	codec := newTestCodec(t)

	access, err := codec.Issue(token.PurposeAccess, "user_1", token.Extra{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	source := &stubUserSource{
		getUserFn: func(context.Context, string) (*domain.User, error) {
			return nil, errors.New("store down")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+access)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Authenticate(codec, source, zerolog.Nop())(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err = handler(c)
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusUnauthorized {
		t.Fatalf("store outage must not look like a credential failure, got %v", err)
	}
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestOptionalAuthenticate_Degrades(t *testing.T) {
	e := echo.New()
	codec := newTestCodec(t)

	// No header: anonymous, next still runs.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := OptionalAuthenticate(codec, userSourceWith(nil))(func(c echo.Context) error {
		if _, ok := CurrentUser(c); ok {
			t.Fatalf("expected anonymous context")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("anonymous: %v", err)
	}

	// Bad token: still anonymous, no error.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer garbage")
	c = e.NewContext(req, httptest.NewRecorder())
	if err := handler(c); err != nil {
		t.Fatalf("bad token: %v", err)
	}

	// Valid token: user attached.
	user := activeUser("user_1")
	signed, err := codec.Issue(token.PurposeAccess, "user_1", token.Extra{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
	c = e.NewContext(req, httptest.NewRecorder())

	handler = OptionalAuthenticate(codec, userSourceWith(user))(func(c echo.Context) error {
		got, ok := CurrentUser(c)
		if !ok || got.ID != "user_1" {
			t.Fatalf("expected user in context")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("valid token: %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	e := echo.New()

	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"", "", false},
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"BEARER abc", "abc", true},
		{"Bearer ", "", false},
		{"Token abc", "", false},
		{"abc", "", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set(echo.HeaderAuthorization, tc.header)
		}
		c := e.NewContext(req, httptest.NewRecorder())

		got, ok := bearerToken(c)
		if got != tc.want || ok != tc.ok {
			t.Errorf("bearerToken(%q) = (%q,%v), want (%q,%v)", tc.header, got, ok, tc.want, tc.ok)
		}
	}
}
