package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osintlab/osint-platform/internal/middleware"
	"github.com/osintlab/osint-platform/internal/models"
	"github.com/osintlab/osint-platform/internal/services"
)

// Mock implementations for testing

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Register(ctx context.Context, username, email, password string, fullName *string) (*models.User, error) {
	args := m.Called(ctx, username, email, password, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthenticator) Login(ctx context.Context, username, password string) (*models.User, string, time.Time, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, "", time.Time{}, args.Error(3)
	}
	return args.Get(0).(*models.User), args.String(1), args.Get(2).(time.Time), args.Error(3)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(username string) (string, time.Time, error) {
	args := m.Called(username)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) RevokeToken(ctx context.Context, tokenString string) error {
	args := m.Called(ctx, tokenString)
	return args.Error(0)
}

type MockSessionManager struct {
	mock.Mock
}

func (m *MockSessionManager) CreateSession(ctx context.Context, userID uuid.UUID, deviceInfo, ipAddress string) (string, error) {
	args := m.Called(ctx, userID, deviceInfo, ipAddress)
	return args.String(0), args.Error(1)
}

func (m *MockSessionManager) ListUserSessions(ctx context.Context, userID uuid.UUID) ([]*models.LoginSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LoginSession), args.Error(1)
}

func (m *MockSessionManager) RevokeSession(ctx context.Context, userID uuid.UUID, sessionID string) error {
	args := m.Called(ctx, userID, sessionID)
	return args.Error(0)
}

func (m *MockSessionManager) RevokeAllSessions(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockPermissionsDB struct {
	mock.Mock
}

func (m *MockPermissionsDB) UpdatePermissions(ctx context.Context, userID uuid.UUID, granted bool, platforms []models.Platform) (*models.User, error) {
	args := m.Called(ctx, userID, granted, platforms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockCollectionStarter struct {
	mock.Mock
}

func (m *MockCollectionStarter) StartCollection(ctx context.Context, user *models.User) ([]models.CollectionJob, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CollectionJob), args.Error(1)
}

// Test helper functions

func setupAuthHandler(t *testing.T) (*AuthHandler, *MockAuthenticator, *MockTokenService, *MockSessionManager, *MockPermissionsDB, *MockCollectionStarter) {
	t.Helper()

	mockAuth := new(MockAuthenticator)
	mockTokens := new(MockTokenService)
	mockSessions := new(MockSessionManager)
	mockDB := new(MockPermissionsDB)
	mockCollector := new(MockCollectionStarter)

	handler := NewAuthHandler(mockAuth, mockTokens, mockSessions, mockDB, mockCollector, nil)

	return handler, mockAuth, mockTokens, mockSessions, mockDB, mockCollector
}

func testUser() *models.User {
	return &models.User{
		ID:        uuid.New(),
		Username:  "alice",
		Email:     "alice@example.com",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

func withUser(req *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserKey, user)
	return req.WithContext(ctx)
}

// Tests

func TestRegister(t *testing.T) {
	t.Run("creates user and returns token", func(t *testing.T) {
		handler, mockAuth, mockTokens, mockSessions, _, _ := setupAuthHandler(t)

		user := testUser()
		expiresAt := time.Now().Add(30 * time.Minute)

		mockAuth.On("Register", mock.Anything, "alice", "alice@example.com", "s3cret", (*string)(nil)).Return(user, nil)
		mockTokens.On("GenerateToken", "alice").Return("token_xyz", expiresAt, nil)
		mockSessions.On("CreateSession", mock.Anything, user.ID, mock.Anything, mock.Anything).Return("session_1", nil)

		body, _ := json.Marshal(map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "s3cret",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Register(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp Token
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "token_xyz", resp.AccessToken)
		assert.Equal(t, "bearer", resp.TokenType)
		require.NotNil(t, resp.User)
		assert.Equal(t, "alice", resp.User.Username)

		mockAuth.AssertExpectations(t)
		mockTokens.AssertExpectations(t)
		mockSessions.AssertExpectations(t)
	})

	t.Run("rejects duplicate username with 400", func(t *testing.T) {
		handler, mockAuth, _, _, _, _ := setupAuthHandler(t)

		mockAuth.On("Register", mock.Anything, "alice", "alice@example.com", "s3cret", (*string)(nil)).
			Return(nil, services.ErrUsernameTaken)

		body, _ := json.Marshal(map[string]string{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "s3cret",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Register(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Username already registered")
		mockAuth.AssertExpectations(t)
	})

	t.Run("rejects missing fields with 422", func(t *testing.T) {
		handler, _, _, _, _, _ := setupAuthHandler(t)

		body, _ := json.Marshal(map[string]string{"username": "alice"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Register(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	loginRequest := func(username, password string) *http.Request {
		form := url.Values{}
		form.Set("username", username)
		form.Set("password", password)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	t.Run("returns token for valid form credentials", func(t *testing.T) {
		handler, mockAuth, _, mockSessions, _, _ := setupAuthHandler(t)

		user := testUser()
		expiresAt := time.Now().Add(30 * time.Minute)

		mockAuth.On("Login", mock.Anything, "alice", "s3cret").Return(user, "token_abc", expiresAt, nil)
		mockSessions.On("CreateSession", mock.Anything, user.ID, mock.Anything, mock.Anything).Return("session_1", nil)

		rec := httptest.NewRecorder()
		handler.Login(rec, loginRequest("alice", "s3cret"))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp Token
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "token_abc", resp.AccessToken)

		mockAuth.AssertExpectations(t)
		mockSessions.AssertExpectations(t)
	})

	t.Run("returns 401 for bad credentials", func(t *testing.T) {
		handler, mockAuth, _, _, _, _ := setupAuthHandler(t)

		mockAuth.On("Login", mock.Anything, "alice", "wrong").
			Return(nil, "", time.Time{}, services.ErrInvalidCredentials)

		rec := httptest.NewRecorder()
		handler.Login(rec, loginRequest("alice", "wrong"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Incorrect username or password")
	})

	t.Run("returns 400 for inactive user", func(t *testing.T) {
		handler, mockAuth, _, _, _, _ := setupAuthHandler(t)

		mockAuth.On("Login", mock.Anything, "alice", "s3cret").
			Return(nil, "", time.Time{}, services.ErrInactiveUser)

		rec := httptest.NewRecorder()
		handler.Login(rec, loginRequest("alice", "s3cret"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Inactive user")
	})

	t.Run("login session failure does not block login", func(t *testing.T) {
		handler, mockAuth, _, mockSessions, _, _ := setupAuthHandler(t)

		user := testUser()
		mockAuth.On("Login", mock.Anything, "alice", "s3cret").Return(user, "token_abc", time.Now().Add(time.Hour), nil)
		mockSessions.On("CreateSession", mock.Anything, user.ID, mock.Anything, mock.Anything).
			Return("", assert.AnError)

		rec := httptest.NewRecorder()
		handler.Login(rec, loginRequest("alice", "s3cret"))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestMe(t *testing.T) {
	t.Run("returns user from context", func(t *testing.T) {
		handler, _, _, _, _, _ := setupAuthHandler(t)

		user := testUser()
		req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil), user)
		rec := httptest.NewRecorder()

		handler.Me(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp models.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, user.Username, resp.Username)
		assert.Equal(t, user.Email, resp.Email)
	})

	t.Run("returns 401 without user in context", func(t *testing.T) {
		handler, _, _, _, _, _ := setupAuthHandler(t)

		rec := httptest.NewRecorder()
		handler.Me(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLogout(t *testing.T) {
	t.Run("revokes token and confirms", func(t *testing.T) {
		handler, _, mockTokens, _, _, _ := setupAuthHandler(t)

		user := testUser()
		mockTokens.On("RevokeToken", mock.Anything, "bearer_token").Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		req = withUser(req, user)
		req = req.WithContext(context.WithValue(req.Context(), middleware.TokenKey, "bearer_token"))
		rec := httptest.NewRecorder()

		handler.Logout(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "User alice successfully logged out")
		mockTokens.AssertExpectations(t)
	})

	t.Run("revocation failure still logs out", func(t *testing.T) {
		handler, _, mockTokens, _, _, _ := setupAuthHandler(t)

		mockTokens.On("RevokeToken", mock.Anything, "bearer_token").Return(assert.AnError)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		req = withUser(req, testUser())
		req = req.WithContext(context.WithValue(req.Context(), middleware.TokenKey, "bearer_token"))
		rec := httptest.NewRecorder()

		handler.Logout(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestUpdatePermissions(t *testing.T) {
	t.Run("updates platforms and starts collection", func(t *testing.T) {
		handler, _, _, _, mockDB, mockCollector := setupAuthHandler(t)

		user := testUser()
		now := time.Now()
		updated := *user
		updated.PermissionsGranted = true
		updated.EnabledPlatforms = []models.Platform{models.PlatformTwitter, models.PlatformReddit}
		updated.LastPermissionsUpdate = &now

		mockDB.On("UpdatePermissions", mock.Anything, user.ID, true,
			[]models.Platform{models.PlatformTwitter, models.PlatformReddit}).Return(&updated, nil)
		mockCollector.On("StartCollection", mock.Anything, &updated).Return([]models.CollectionJob{}, nil)

		body, _ := json.Marshal(map[string][]string{"platforms": {"twitter", "reddit"}})
		req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/auth/permissions", bytes.NewReader(body)), user)
		rec := httptest.NewRecorder()

		handler.UpdatePermissions(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp PermissionsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.PermissionsGranted)
		assert.Equal(t, []models.Platform{models.PlatformTwitter, models.PlatformReddit}, resp.EnabledPlatforms)

		mockDB.AssertExpectations(t)
		mockCollector.AssertExpectations(t)
	})

	t.Run("skips unknown platforms", func(t *testing.T) {
		handler, _, _, _, mockDB, mockCollector := setupAuthHandler(t)

		user := testUser()
		updated := *user
		updated.EnabledPlatforms = []models.Platform{models.PlatformTwitter}

		mockDB.On("UpdatePermissions", mock.Anything, user.ID, true,
			[]models.Platform{models.PlatformTwitter}).Return(&updated, nil)
		mockCollector.On("StartCollection", mock.Anything, &updated).Return([]models.CollectionJob{}, nil)

		body, _ := json.Marshal(map[string][]string{"platforms": {"twitter", "myspace"}})
		req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/auth/permissions", bytes.NewReader(body)), user)
		rec := httptest.NewRecorder()

		handler.UpdatePermissions(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockDB.AssertExpectations(t)
	})

	t.Run("empty list revokes permissions without collection", func(t *testing.T) {
		handler, _, _, _, mockDB, mockCollector := setupAuthHandler(t)

		user := testUser()
		updated := *user
		updated.PermissionsGranted = false
		updated.EnabledPlatforms = []models.Platform{}

		mockDB.On("UpdatePermissions", mock.Anything, user.ID, false, []models.Platform{}).Return(&updated, nil)

		body, _ := json.Marshal(map[string][]string{"platforms": {}})
		req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/auth/permissions", bytes.NewReader(body)), user)
		rec := httptest.NewRecorder()

		handler.UpdatePermissions(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockDB.AssertExpectations(t)
		mockCollector.AssertNotCalled(t, "StartCollection", mock.Anything, mock.Anything)
	})

	t.Run("normalizes google alias to youtube", func(t *testing.T) {
		handler, _, _, _, mockDB, mockCollector := setupAuthHandler(t)

		user := testUser()
		updated := *user
		updated.EnabledPlatforms = []models.Platform{models.PlatformYouTube}

		mockDB.On("UpdatePermissions", mock.Anything, user.ID, true,
			[]models.Platform{models.PlatformYouTube}).Return(&updated, nil)
		mockCollector.On("StartCollection", mock.Anything, &updated).Return([]models.CollectionJob{}, nil)

		body, _ := json.Marshal(map[string][]string{"platforms": {"youtube"}})
		req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/auth/permissions", bytes.NewReader(body)), user)
		rec := httptest.NewRecorder()

		handler.UpdatePermissions(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockDB.AssertExpectations(t)
	})
}

func TestCollectData(t *testing.T) {
	t.Run("dispatches jobs and returns 202", func(t *testing.T) {
		handler, _, _, _, _, mockCollector := setupAuthHandler(t)

		user := testUser()
		jobs := []models.CollectionJob{
			{ID: "job_1", Platform: models.PlatformTwitter, Status: models.JobPending},
			{ID: "job_2", Platform: models.PlatformReddit, Status: models.JobPending},
		}
		mockCollector.On("StartCollection", mock.Anything, user).Return(jobs, nil)

		req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/auth/collect-data", nil), user)
		rec := httptest.NewRecorder()

		handler.CollectData(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)

		var resp struct {
			Message string                 `json:"message"`
			Jobs    []models.CollectionJob `json:"jobs"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Data collection started", resp.Message)
		assert.Len(t, resp.Jobs, 2)

		mockCollector.AssertExpectations(t)
	})

	t.Run("returns 400 when no platforms enabled", func(t *testing.T) {
		handler, _, _, _, _, mockCollector := setupAuthHandler(t)

		user := testUser()
		mockCollector.On("StartCollection", mock.Anything, user).Return(nil, services.ErrNoPlatformsEnabled)

		req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/auth/collect-data", nil), user)
		rec := httptest.NewRecorder()

		handler.CollectData(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "No platforms enabled for data collection")
	})
}

func TestListSessions(t *testing.T) {
	t.Run("lists sessions for the user", func(t *testing.T) {
		handler, _, _, mockSessions, _, _ := setupAuthHandler(t)

		user := testUser()
		sessions := []*models.LoginSession{
			{ID: "session_1", UserID: user.ID, DeviceInfo: "Chrome 120 on Windows (Desktop)", IPAddress: "203.0.113.42"},
			{ID: "session_2", UserID: user.ID, DeviceInfo: "Safari 17 on iOS (Mobile)", IPAddress: "198.51.100.10"},
		}
		mockSessions.On("ListUserSessions", mock.Anything, user.ID).Return(sessions, nil)

		req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/auth/sessions", nil), user)
		rec := httptest.NewRecorder()

		handler.ListSessions(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp map[string][]models.LoginSession
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp["sessions"], 2)

		mockSessions.AssertExpectations(t)
	})
}

func TestRevokeSession(t *testing.T) {
	t.Run("revokes by path param", func(t *testing.T) {
		handler, _, _, mockSessions, _, _ := setupAuthHandler(t)

		user := testUser()
		mockSessions.On("RevokeSession", mock.Anything, user.ID, "session_42").Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/auth/sessions/session_42", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", "session_42")
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		req = withUser(req, user)
		rec := httptest.NewRecorder()

		handler.RevokeSession(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Session revoked successfully")
		mockSessions.AssertExpectations(t)
	})

	t.Run("returns 400 on missing session ID", func(t *testing.T) {
		handler, _, _, _, _, _ := setupAuthHandler(t)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/auth/sessions/", nil)
		rctx := chi.NewRouteContext()
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		req = withUser(req, testUser())
		rec := httptest.NewRecorder()

		handler.RevokeSession(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
