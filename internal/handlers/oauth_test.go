package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osintlab/osint-platform/internal/database"
	"github.com/osintlab/osint-platform/internal/models"
	"github.com/osintlab/osint-platform/internal/services"
)

type MockConnector struct {
	mock.Mock
}

func (m *MockConnector) Supported(platform models.Platform) bool {
	args := m.Called(platform)
	return args.Bool(0)
}

func (m *MockConnector) BuildAuthURL(ctx context.Context, userID uuid.UUID, platform models.Platform) (string, string, error) {
	args := m.Called(ctx, userID, platform)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockConnector) HandleCallback(ctx context.Context, platform models.Platform, code, state string) (*models.SocialAccount, error) {
	args := m.Called(ctx, platform, code, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SocialAccount), args.Error(1)
}

type MockAccountDB struct {
	mock.Mock
}

func (m *MockAccountDB) ListSocialAccounts(ctx context.Context, userID uuid.UUID) ([]models.SocialAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SocialAccount), args.Error(1)
}

func (m *MockAccountDB) DeleteSocialAccount(ctx context.Context, userID uuid.UUID, platform models.Platform) error {
	args := m.Called(ctx, userID, platform)
	return args.Error(0)
}

const testFrontendURL = "http://localhost:3000"

func setupOAuthHandler(t *testing.T) (*OAuthHandler, *MockConnector, *MockAccountDB) {
	t.Helper()

	mockOAuth := new(MockConnector)
	mockDB := new(MockAccountDB)
	handler := NewOAuthHandler(mockOAuth, mockDB, testFrontendURL)

	return handler, mockOAuth, mockDB
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// redirectQuery parses the Location header of a recorded redirect.
func redirectQuery(t *testing.T, rec *httptest.ResponseRecorder) url.Values {
	t.Helper()

	location := rec.Header().Get("Location")
	require.NotEmpty(t, location)
	u, err := url.Parse(location)
	require.NoError(t, err)
	return u.Query()
}

func TestConnect(t *testing.T) {
	t.Run("returns auth URL and state", func(t *testing.T) {
		handler, mockOAuth, _ := setupOAuthHandler(t)

		user := testUser()
		mockOAuth.On("BuildAuthURL", mock.Anything, user.ID, models.PlatformReddit).
			Return("https://www.reddit.com/api/v1/authorize?client_id=abc", "state_123", nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/oauth/connect/reddit", nil)
		req = withURLParam(req, "platform", "reddit")
		req = withUser(req, user)
		rec := httptest.NewRecorder()

		handler.Connect(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "reddit.com")
		assert.Contains(t, rec.Body.String(), "state_123")
		mockOAuth.AssertExpectations(t)
	})

	t.Run("rejects unknown platform", func(t *testing.T) {
		handler, _, _ := setupOAuthHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/oauth/connect/myspace", nil)
		req = withURLParam(req, "platform", "myspace")
		req = withUser(req, testUser())
		rec := httptest.NewRecorder()

		handler.Connect(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Unsupported platform: myspace")
	})

	t.Run("reports unconfigured platform", func(t *testing.T) {
		handler, mockOAuth, _ := setupOAuthHandler(t)

		user := testUser()
		mockOAuth.On("BuildAuthURL", mock.Anything, user.ID, models.PlatformTwitter).
			Return("", "", services.ErrPlatformNotConfigured)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/oauth/connect/twitter", nil)
		req = withURLParam(req, "platform", "twitter")
		req = withUser(req, user)
		rec := httptest.NewRecorder()

		handler.Connect(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "twitter OAuth is not configured")
	})
}

func TestCallback(t *testing.T) {
	t.Run("successful exchange redirects with success", func(t *testing.T) {
		handler, mockOAuth, _ := setupOAuthHandler(t)

		account := &models.SocialAccount{
			ID:       uuid.New(),
			UserID:   uuid.New(),
			Platform: models.PlatformReddit,
			Username: "snoo",
		}
		mockOAuth.On("HandleCallback", mock.Anything, models.PlatformReddit, "auth_code", "state_123").
			Return(account, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/oauth/reddit/callback?code=auth_code&state=state_123", nil)
		req = withURLParam(req, "platform", "reddit")
		rec := httptest.NewRecorder()

		handler.Callback(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), testFrontendURL+"/social-accounts")

		q := redirectQuery(t, rec)
		assert.Equal(t, "true", q.Get("success"))
		assert.Equal(t, "reddit", q.Get("platform"))

		mockOAuth.AssertExpectations(t)
	})

	t.Run("google provider path resolves to youtube", func(t *testing.T) {
		handler, mockOAuth, _ := setupOAuthHandler(t)

		account := &models.SocialAccount{
			ID:       uuid.New(),
			UserID:   uuid.New(),
			Platform: models.PlatformYouTube,
			Username: "creator",
		}
		mockOAuth.On("HandleCallback", mock.Anything, models.PlatformYouTube, "auth_code", "state_123").
			Return(account, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/oauth/google/callback?code=auth_code&state=state_123", nil)
		req = withURLParam(req, "platform", "google")
		rec := httptest.NewRecorder()

		handler.Callback(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		q := redirectQuery(t, rec)
		assert.Equal(t, "youtube", q.Get("platform"))

		mockOAuth.AssertExpectations(t)
	})

	t.Run("provider denial redirects with error code", func(t *testing.T) {
		handler, mockOAuth, _ := setupOAuthHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/oauth/facebook/callback?error=access_denied", nil)
		req = withURLParam(req, "platform", "facebook")
		rec := httptest.NewRecorder()

		handler.Callback(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		q := redirectQuery(t, rec)
		assert.Equal(t, "access_denied", q.Get("error"))
		assert.Equal(t, "facebook", q.Get("platform"))

		mockOAuth.AssertNotCalled(t, "HandleCallback", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing code or state redirects with error", func(t *testing.T) {
		handler, _, _ := setupOAuthHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/oauth/facebook/callback?code=only_code", nil)
		req = withURLParam(req, "platform", "facebook")
		rec := httptest.NewRecorder()

		handler.Callback(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		q := redirectQuery(t, rec)
		assert.Equal(t, "missing_code_or_state", q.Get("error"))
	})

	t.Run("exchange failure redirects with connection_failed", func(t *testing.T) {
		handler, mockOAuth, _ := setupOAuthHandler(t)

		mockOAuth.On("HandleCallback", mock.Anything, models.PlatformFacebook, "bad_code", "state_123").
			Return(nil, assert.AnError)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/oauth/facebook/callback?code=bad_code&state=state_123", nil)
		req = withURLParam(req, "platform", "facebook")
		rec := httptest.NewRecorder()

		handler.Callback(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		q := redirectQuery(t, rec)
		assert.Equal(t, "connection_failed", q.Get("error"))
		mockOAuth.AssertExpectations(t)
	})
}

func TestListAccounts(t *testing.T) {
	t.Run("returns connected accounts", func(t *testing.T) {
		handler, _, mockDB := setupOAuthHandler(t)

		user := testUser()
		accounts := []models.SocialAccount{
			{ID: uuid.New(), UserID: user.ID, Platform: models.PlatformTwitter, Username: "alice_tw"},
			{ID: uuid.New(), UserID: user.ID, Platform: models.PlatformReddit, Username: "alice_rd"},
		}
		mockDB.On("ListSocialAccounts", mock.Anything, user.ID).Return(accounts, nil)

		req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/oauth/accounts", nil), user)
		rec := httptest.NewRecorder()

		handler.ListAccounts(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "alice_tw")
		assert.Contains(t, rec.Body.String(), "alice_rd")
		mockDB.AssertExpectations(t)
	})
}

func TestDisconnect(t *testing.T) {
	t.Run("removes the account", func(t *testing.T) {
		handler, _, mockDB := setupOAuthHandler(t)

		user := testUser()
		mockDB.On("DeleteSocialAccount", mock.Anything, user.ID, models.PlatformTwitter).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/oauth/disconnect/twitter", nil)
		req = withURLParam(req, "platform", "twitter")
		req = withUser(req, user)
		rec := httptest.NewRecorder()

		handler.Disconnect(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Successfully disconnected twitter account")
		mockDB.AssertExpectations(t)
	})

	t.Run("google alias disconnects youtube", func(t *testing.T) {
		handler, _, mockDB := setupOAuthHandler(t)

		user := testUser()
		mockDB.On("DeleteSocialAccount", mock.Anything, user.ID, models.PlatformYouTube).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/oauth/disconnect/google", nil)
		req = withURLParam(req, "platform", "google")
		req = withUser(req, user)
		rec := httptest.NewRecorder()

		handler.Disconnect(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Successfully disconnected youtube account")
		mockDB.AssertExpectations(t)
	})

	t.Run("returns 404 when nothing connected", func(t *testing.T) {
		handler, _, mockDB := setupOAuthHandler(t)

		user := testUser()
		mockDB.On("DeleteSocialAccount", mock.Anything, user.ID, models.PlatformReddit).
			Return(database.ErrAccountNotFound)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/oauth/disconnect/reddit", nil)
		req = withURLParam(req, "platform", "reddit")
		req = withUser(req, user)
		rec := httptest.NewRecorder()

		handler.Disconnect(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "No reddit account connected")
		mockDB.AssertExpectations(t)
	})
}
