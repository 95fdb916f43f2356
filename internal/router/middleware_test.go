package router

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pressroom/internal/auth"
	errs "pressroom/internal/errors"
	"pressroom/internal/model"
	"pressroom/internal/session"
)

// MockSessionStore is a mock implementation of session.Store.
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, identityID uuid.UUID, ttl time.Duration) (string, error) {
	args := m.Called(ctx, identityID, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockSessionStore) Destroy(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockFlash is a mock implementation of session.Flash.
type MockFlash struct {
	mock.Mock
}

func (m *MockFlash) Push(ctx context.Context, scope, category, text string) error {
	args := m.Called(ctx, scope, category, text)
	return args.Error(0)
}

func (m *MockFlash) Drain(ctx context.Context, scope string) ([]session.Message, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]session.Message), args.Error(1)
}

func newTestMiddleware(sessions *MockSessionStore, users *MockUserRepository, flash *MockFlash) *Middleware {
	signer := auth.NewCookieSigner("test-secret", time.Hour)
	return NewMiddleware(signer, sessions, users, flash)
}

func next(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestMustBeLoggedIn_RedirectsAnonymous(t *testing.T) {
	flash := new(MockFlash)
	flash.On("Push", mock.Anything, "scope-1", "danger", "You must be logged in!").Return(nil)
	m := newTestMiddleware(new(MockSessionStore), new(MockUserRepository), flash)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/news/new", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	session.SetScope(c, "scope-1")

	require.NoError(t, m.MustBeLoggedIn(next)(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	flash.AssertExpectations(t)
}

func TestMustBeLoggedIn_PassesAuthenticated(t *testing.T) {
	m := newTestMiddleware(new(MockSessionStore), new(MockUserRepository), new(MockFlash))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/news/new", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	auth.SetIdentity(c, &model.User{ID: uuid.New()})

	require.NoError(t, m.MustBeLoggedIn(next)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMustBeLoggedOut_RedirectsAuthenticated(t *testing.T) {
	flash := new(MockFlash)
	flash.On("Push", mock.Anything, "scope-1", "danger", "You are already logged in!").Return(nil)
	m := newTestMiddleware(new(MockSessionStore), new(MockUserRepository), flash)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	session.SetScope(c, "scope-1")
	auth.SetIdentity(c, &model.User{ID: uuid.New()})

	require.NoError(t, m.MustBeLoggedOut(next)(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/news", rec.Header().Get(echo.HeaderLocation))
	flash.AssertExpectations(t)
}

func TestResolveIdentity_ValidCookie(t *testing.T) {
	identityID := uuid.New()
	user := &model.User{ID: identityID, Email: "a@b.com"}

	sessions := new(MockSessionStore)
	sessions.On("Resolve", mock.Anything, "token-1").Return(identityID, nil)
	users := new(MockUserRepository)
	users.On("FindByID", mock.Anything, identityID).Return(user, nil)
	m := newTestMiddleware(sessions, users, new(MockFlash))

	signed, err := m.signer.Sign("token-1")
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: signed})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var resolved *model.User
	handler := m.ResolveIdentity(func(c echo.Context) error {
		resolved, _ = auth.IdentityFrom(c)
		return nil
	})
	require.NoError(t, handler(c))

	require.NotNil(t, resolved)
	assert.Equal(t, identityID, resolved.ID)
}

func TestResolveIdentity_StoreFailureSurfaces(t *testing.T) {
	storeErr := stderrors.New("load session: connection refused")
	sessions := new(MockSessionStore)
	sessions.On("Resolve", mock.Anything, "token-1").Return(uuid.Nil, storeErr)
	users := new(MockUserRepository)
	m := newTestMiddleware(sessions, users, new(MockFlash))

	signed, err := m.signer.Sign("token-1")
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/news/new", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: signed})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := m.ResolveIdentity(func(c echo.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, handler(c), storeErr)
	assert.False(t, called)
	users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestResolveIdentity_ExpiredSessionStaysAnonymous(t *testing.T) {
	sessions := new(MockSessionStore)
	sessions.On("Resolve", mock.Anything, "token-1").Return(uuid.Nil, errs.ErrNoSession)
	m := newTestMiddleware(sessions, new(MockUserRepository), new(MockFlash))

	signed, err := m.signer.Sign("token-1")
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: signed})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var ok bool
	handler := m.ResolveIdentity(func(c echo.Context) error {
		_, ok = auth.IdentityFrom(c)
		return nil
	})
	require.NoError(t, handler(c))
	assert.False(t, ok)
}

func TestResolveIdentity_DeletedIdentityStaysAnonymous(t *testing.T) {
	identityID := uuid.New()
	sessions := new(MockSessionStore)
	sessions.On("Resolve", mock.Anything, "token-1").Return(identityID, nil)
	users := new(MockUserRepository)
	users.On("FindByID", mock.Anything, identityID).Return(nil, gorm.ErrRecordNotFound)
	m := newTestMiddleware(sessions, users, new(MockFlash))

	signed, err := m.signer.Sign("token-1")
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: signed})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var ok bool
	handler := m.ResolveIdentity(func(c echo.Context) error {
		_, ok = auth.IdentityFrom(c)
		return nil
	})
	require.NoError(t, handler(c))
	assert.False(t, ok)
}

func TestResolveIdentity_TamperedCookieStaysAnonymous(t *testing.T) {
	sessions := new(MockSessionStore)
	users := new(MockUserRepository)
	m := newTestMiddleware(sessions, users, new(MockFlash))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "not-a-signed-token"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var ok bool
	handler := m.ResolveIdentity(func(c echo.Context) error {
		_, ok = auth.IdentityFrom(c)
		return nil
	})
	require.NoError(t, handler(c))

	assert.False(t, ok)
	sessions.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestResolveIdentity_AssignsFlashScope(t *testing.T) {
	m := newTestMiddleware(new(MockSessionStore), new(MockUserRepository), new(MockFlash))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var scope string
	handler := m.ResolveIdentity(func(c echo.Context) error {
		scope = session.ScopeFrom(c)
		return nil
	})
	require.NoError(t, handler(c))

	assert.NotEmpty(t, scope)
	// the scope is persisted in a cookie for the next request
	found := false
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.ScopeCookie && ck.Value == scope {
			found = true
		}
	}
	assert.True(t, found)
}
