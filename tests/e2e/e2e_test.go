package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/djdeepak14/laundry-backend/internal/config"
	"github.com/djdeepak14/laundry-backend/internal/database"
	"github.com/djdeepak14/laundry-backend/internal/domain"
	"github.com/djdeepak14/laundry-backend/internal/middleware"
	"github.com/djdeepak14/laundry-backend/internal/modules/admin"
	"github.com/djdeepak14/laundry-backend/internal/modules/auth"
	"github.com/djdeepak14/laundry-backend/internal/modules/booking"
	"github.com/djdeepak14/laundry-backend/internal/modules/machines"
	jwtsvc "github.com/djdeepak14/laundry-backend/internal/pkg/jwt"
	"github.com/djdeepak14/laundry-backend/internal/repository"
)

type E2ETestSuite struct {
	router     *gin.Engine
	db         *gorm.DB
	jwtService *jwtsvc.Service
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	db, err := database.Connect(filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db), "Failed to migrate test database")

	store := repository.NewStore(db)
	jwtService := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)

	policy, err := booking.NewPolicy(config.Default().Booking)
	require.NoError(t, err)

	authHandler := auth.NewHandler(auth.NewService(store.Users, jwtService))
	machineHandler := machines.NewHandler(machines.NewService(store.Machines))
	bookingHandler := booking.NewHandler(booking.NewService(store, policy))
	adminHandler := admin.NewHandler(admin.NewService(store.Users))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")

	authHandler.RegisterRoutes(v1)
	machineHandler.RegisterRoutes(v1)

	protected := v1.Group("/")
	protected.Use(middleware.Auth(jwtService))
	{
		authHandler.RegisterProtectedRoutes(protected)
		bookingHandler.RegisterRoutes(protected)
	}

	adminGroup := v1.Group("/admin")
	adminGroup.Use(middleware.Auth(jwtService), middleware.AdminOnly())
	{
		adminHandler.RegisterRoutes(adminGroup)
		machineHandler.RegisterAdminRoutes(adminGroup)
		bookingHandler.RegisterAdminRoutes(adminGroup)
	}

	// seed the admin account
	hash, err := bcrypt.GenerateFromPassword([]byte("AdminPass123!"), bcrypt.DefaultCost)
	require.NoError(t, err)
	adminUser := &domain.User{
		Name:         "Admin User",
		Email:        "admin@test.com",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		IsApproved:   true,
	}
	require.NoError(t, db.Create(adminUser).Error, "Failed to create admin user")

	return &E2ETestSuite{router: r, db: db, jwtService: jwtService}
}

func (s *E2ETestSuite) makeRequest(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, error) {
	var bodyBytes []byte
	var err error

	if body != nil {
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w, nil
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *TestResponse {
	t.Helper()
	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp),
		"Failed to parse response. Status: %d, Body: %s", w.Code, w.Body.String())
	return &resp
}

// approveUser flips the approval flag directly in the database, standing in
// for the admin approval step.
func (s *E2ETestSuite) approveUser(t *testing.T, email string) {
	t.Helper()
	require.NoError(t, s.db.Model(&domain.User{}).Where("email = ?", email).Update("is_approved", true).Error)
}

// registerAndLogin creates a resident account, approves it, and returns its
// bearer token.
func (s *E2ETestSuite) registerAndLogin(t *testing.T, email string) string {
	t.Helper()

	w, err := s.makeRequest("POST", "/api/v1/users/register", map[string]interface{}{
		"name":             "Resident",
		"email":            email,
		"password":         "Password123!",
		"confirm_password": "Password123!",
	}, "")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, w.Code, "registration failed: %s", w.Body.String())

	s.approveUser(t, email)

	w, err = s.makeRequest("POST", "/api/v1/users/login", map[string]interface{}{
		"email":    email,
		"password": "Password123!",
	}, "")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code)

	resp := parseResponse(t, w)
	token, ok := resp.Data["access_token"].(string)
	require.True(t, ok, "login response missing access_token")
	return token
}

func (s *E2ETestSuite) adminToken(t *testing.T) string {
	t.Helper()
	var adminUser domain.User
	require.NoError(t, s.db.Where("email = ?", "admin@test.com").First(&adminUser).Error)
	token, err := s.jwtService.GenerateToken(adminUser.ID, adminUser.Role)
	require.NoError(t, err)
	return token
}

// seedFleet creates washers and dryers through the admin API and returns the
// machine IDs keyed by code.
func (s *E2ETestSuite) seedFleet(t *testing.T, adminToken string, codes map[string]string) map[string]int64 {
	t.Helper()
	ids := make(map[string]int64, len(codes))
	for code, typ := range codes {
		w, err := s.makeRequest("POST", "/api/v1/admin/machines", map[string]interface{}{
			"code": code,
			"type": typ,
		}, adminToken)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, w.Code, "machine %s creation failed: %s", code, w.Body.String())

		resp := parseResponse(t, w)
		machine, ok := resp.Data["machine"].(map[string]interface{})
		require.True(t, ok)
		ids[code] = int64(machine["id"].(float64))
	}
	return ids
}

// nextMondaySlot returns a bookable washer slot on a Monday morning at least a
// week out, so a whole scheduling week is free around it.
func nextMondaySlot() time.Time {
	d := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 7)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Add(8 * time.Hour)
}

func TestFlow1_RegistrationAndAuth(t *testing.T) {
	suite := setupTestSuite(t)

	t.Run("POST /users/register", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/v1/users/register", map[string]interface{}{
			"name":             "John Doe",
			"email":            "resident@test.com",
			"password":         "Password123!",
			"confirm_password": "Password123!",
		}, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, w.Code)

		resp := parseResponse(t, w)
		assert.True(t, resp.Success)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/v1/users/register", map[string]interface{}{
			"name":             "John Again",
			"email":            "resident@test.com",
			"password":         "Password123!",
			"confirm_password": "Password123!",
		}, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, w.Code)

		resp := parseResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "EMAIL_TAKEN", resp.Error.Code)
	})

	t.Run("login blocked until approved", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/v1/users/login", map[string]interface{}{
			"email":    "resident@test.com",
			"password": "Password123!",
		}, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, w.Code)

		resp := parseResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ACCOUNT_NOT_APPROVED", resp.Error.Code)
	})

	t.Run("POST /users/login", func(t *testing.T) {
		suite.approveUser(t, "resident@test.com")

		w, err := suite.makeRequest("POST", "/api/v1/users/login", map[string]interface{}{
			"email":    "resident@test.com",
			"password": "Password123!",
		}, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Data["access_token"])
	})

	t.Run("wrong password", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/v1/users/login", map[string]interface{}{
			"email":    "resident@test.com",
			"password": "WrongPassword1!",
		}, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GET /users/me", func(t *testing.T) {
		token := suite.registerAndLogin(t, "me@test.com")

		w, err := suite.makeRequest("GET", "/api/v1/users/me", nil, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		userMap, ok := resp.Data["user"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "me@test.com", userMap["email"])
	})

	t.Run("protected route without token", func(t *testing.T) {
		w, err := suite.makeRequest("GET", "/api/v1/users/me", nil, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestFlow2_BookingWasherChainsDryer(t *testing.T) {
	suite := setupTestSuite(t)
	adminToken := suite.adminToken(t)

	ids := suite.seedFleet(t, adminToken, map[string]string{
		"W1": "washer", "W2": "washer",
		"D1": "dryer", "D2": "dryer",
	})
	token := suite.registerAndLogin(t, "booker@test.com")
	slot := nextMondaySlot()

	t.Run("GET /machines lists the fleet", func(t *testing.T) {
		w, err := suite.makeRequest("GET", "/api/v1/machines", nil, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		list, ok := resp.Data["machines"].([]interface{})
		require.True(t, ok)
		assert.Len(t, list, 4)
	})

	t.Run("POST /bookings creates washer and dryer pair", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/v1/bookings", map[string]interface{}{
			"machine_id": ids["W1"],
			"start":      slot.Format(time.RFC3339),
		}, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, w.Code, "booking failed: %s", w.Body.String())

		resp := parseResponse(t, w)
		reservations, ok := resp.Data["reservations"].([]interface{})
		require.True(t, ok)
		require.Len(t, reservations, 2)

		washer := reservations[0].(map[string]interface{})
		dryer := reservations[1].(map[string]interface{})
		assert.EqualValues(t, ids["W1"], washer["machine_id"])
		assert.EqualValues(t, ids["D1"], dryer["machine_id"], "dryer slot should land on the matching unit")
		assert.Equal(t, "booked", washer["status"])
		assert.Equal(t, "booked", dryer["status"])
	})

	t.Run("same slot on same washer conflicts", func(t *testing.T) {
		other := suite.registerAndLogin(t, "other@test.com")
		w, err := suite.makeRequest("POST", "/api/v1/bookings", map[string]interface{}{
			"machine_id": ids["W1"],
			"start":      slot.Format(time.RFC3339),
		}, other)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, w.Code)

		resp := parseResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "SLOT_TAKEN", resp.Error.Code)
		assert.NotNil(t, resp.Error.Details)
	})

	t.Run("misaligned start is rejected", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/v1/bookings", map[string]interface{}{
			"machine_id": ids["W2"],
			"start":      slot.Add(30 * time.Minute).Format(time.RFC3339),
		}, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("GET /bookings/upcoming shows the pair", func(t *testing.T) {
		w, err := suite.makeRequest("GET", "/api/v1/bookings/upcoming", nil, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		items, ok := resp.Data["items"].([]interface{})
		require.True(t, ok)
		assert.Len(t, items, 2)
		assert.EqualValues(t, 2, resp.Data["total"])
	})

	t.Run("GET /machines/availability/:id omits booked slot", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/machines/availability/%d?date=%s", ids["W1"], slot.Format("2006-01-02"))
		w, err := suite.makeRequest("GET", path, nil, token)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		free, ok := resp.Data["free_slots"].([]interface{})
		require.True(t, ok)
		assert.Len(t, free, 23)
	})
}

func TestFlow3_WeeklyQuota(t *testing.T) {
	suite := setupTestSuite(t)
	adminToken := suite.adminToken(t)

	ids := suite.seedFleet(t, adminToken, map[string]string{
		"W1": "washer",
		"D1": "dryer", "D2": "dryer",
	})
	token := suite.registerAndLogin(t, "heavyuser@test.com")
	slot := nextMondaySlot()

	book := func(start time.Time) *httptest.ResponseRecorder {
		w, err := suite.makeRequest("POST", "/api/v1/bookings", map[string]interface{}{
			"machine_id": ids["W1"],
			"start":      start.Format(time.RFC3339),
		}, token)
		require.NoError(t, err)
		return w
	}

	// default cap is two washer hours per week
	assert.Equal(t, http.StatusCreated, book(slot).Code)
	assert.Equal(t, http.StatusCreated, book(slot.Add(2*time.Hour)).Code)

	w := book(slot.Add(4 * time.Hour))
	assert.Equal(t, http.StatusConflict, w.Code)

	resp := parseResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "QUOTA_EXCEEDED", resp.Error.Code)

	details, ok := resp.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "washer", details["machine_type"])
	assert.EqualValues(t, 2, details["cap_hours"])
	assert.NotEmpty(t, details["next_week_start"])

	// the following week is open again
	assert.Equal(t, http.StatusCreated, book(slot.AddDate(0, 0, 7)).Code)
}

func TestFlow4_Cancellation(t *testing.T) {
	suite := setupTestSuite(t)
	adminToken := suite.adminToken(t)

	ids := suite.seedFleet(t, adminToken, map[string]string{
		"W1": "washer",
		"D1": "dryer",
	})
	owner := suite.registerAndLogin(t, "owner@test.com")
	stranger := suite.registerAndLogin(t, "stranger@test.com")
	slot := nextMondaySlot()

	w, err := suite.makeRequest("POST", "/api/v1/bookings", map[string]interface{}{
		"machine_id": ids["W1"],
		"start":      slot.Format(time.RFC3339),
	}, owner)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, w.Code, "booking failed: %s", w.Body.String())

	resp := parseResponse(t, w)
	reservations := resp.Data["reservations"].([]interface{})
	washerID := int64(reservations[0].(map[string]interface{})["id"].(float64))
	dryerID := int64(reservations[1].(map[string]interface{})["id"].(float64))

	t.Run("stranger cannot cancel", func(t *testing.T) {
		w, err := suite.makeRequest("DELETE", fmt.Sprintf("/api/v1/bookings/%d", washerID), nil, stranger)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("owner cancels", func(t *testing.T) {
		w, err := suite.makeRequest("DELETE", fmt.Sprintf("/api/v1/bookings/%d", washerID), nil, owner)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		reservation := resp.Data["reservation"].(map[string]interface{})
		assert.Equal(t, "cancelled", reservation["status"])
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		w, err := suite.makeRequest("DELETE", fmt.Sprintf("/api/v1/bookings/%d", washerID), nil, owner)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("admin cancels the dryer leg", func(t *testing.T) {
		w, err := suite.makeRequest("DELETE", fmt.Sprintf("/api/v1/admin/bookings/cancel/%d", dryerID), nil, adminToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("freed slot can be rebooked", func(t *testing.T) {
		w, err := suite.makeRequest("POST", "/api/v1/bookings", map[string]interface{}{
			"machine_id": ids["W1"],
			"start":      slot.Format(time.RFC3339),
		}, stranger)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, w.Code, "rebooking failed: %s", w.Body.String())
	})
}

func TestFlow5_AdminOperations(t *testing.T) {
	suite := setupTestSuite(t)
	adminToken := suite.adminToken(t)
	residentToken := suite.registerAndLogin(t, "pending@test.com")

	t.Run("resident cannot reach admin routes", func(t *testing.T) {
		w, err := suite.makeRequest("GET", "/api/v1/admin/users", nil, residentToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	var residentID int64
	t.Run("GET /admin/users", func(t *testing.T) {
		w, err := suite.makeRequest("GET", "/api/v1/admin/users", nil, adminToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		users, ok := resp.Data["users"].([]interface{})
		require.True(t, ok)
		require.Len(t, users, 2)
		for _, u := range users {
			um := u.(map[string]interface{})
			assert.Empty(t, um["password_hash"], "password hash must never leak")
			if um["email"] == "pending@test.com" {
				residentID = int64(um["id"].(float64))
			}
		}
		require.NotZero(t, residentID)
	})

	t.Run("PATCH /admin/users/:id/approve", func(t *testing.T) {
		w, err := suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/admin/users/%d/approve", residentID), nil, adminToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		user := resp.Data["user"].(map[string]interface{})
		assert.Equal(t, true, user["is_approved"])
	})

	t.Run("machine catalog CRUD", func(t *testing.T) {
		suite.seedFleet(t, adminToken, map[string]string{"W9": "washer"})

		// duplicate code
		w, err := suite.makeRequest("POST", "/api/v1/admin/machines", map[string]interface{}{
			"code": "W9", "type": "washer",
		}, adminToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, w.Code)

		w, err = suite.makeRequest("DELETE", "/api/v1/admin/machines/code/W9", nil, adminToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GET /admin/bookings/all", func(t *testing.T) {
		w, err := suite.makeRequest("GET", "/api/v1/admin/bookings/all", nil, adminToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		assert.True(t, resp.Success)
	})
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}
