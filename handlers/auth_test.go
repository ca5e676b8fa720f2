package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"benefits-backend/models"
)

func TestRegisterSuccess(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	body := map[string]interface{}{
		"email":       "newuser@test.com",
		"password":    "password123",
		"employee_id": 1001,
		"first_name":  "New",
		"last_name":   "User",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["token"] == nil || resp["token"] == "" {
		t.Error("expected token in response")
	}
	if resp["refresh_token"] == nil || resp["refresh_token"] == "" {
		t.Error("expected refresh_token in response")
	}
	user := resp["user"].(map[string]interface{})
	if user["email"] != "newuser@test.com" {
		t.Errorf("expected email newuser@test.com, got %v", user["email"])
	}
	if user["role"] != "collaborator" {
		t.Errorf("expected role collaborator, got %v", user["role"])
	}
	if user["points"].(float64) != 0 {
		t.Errorf("expected new user to start with 0 points, got %v", user["points"])
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	seedTestUser(db, "existing@test.com", "collaborator", 1001, 0)

	body := map[string]interface{}{
		"email":       "existing@test.com",
		"password":    "password123",
		"employee_id": 1002,
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["error"] != "Email already registered" {
		t.Errorf("expected 'Email already registered', got %v", resp["error"])
	}
}

func TestRegisterDuplicateEmployeeNumber(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	seedTestUser(db, "existing@test.com", "collaborator", 1001, 0)

	body := map[string]interface{}{
		"email":       "another@test.com",
		"password":    "password123",
		"employee_id": 1001,
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRegisterValidationMissingEmail(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	body := map[string]interface{}{
		"password":    "password123",
		"employee_id": 1001,
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRegisterValidationShortPassword(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	body := map[string]interface{}{
		"email":       "short@test.com",
		"password":    "short",
		"employee_id": 1001,
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginSuccess(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	seedTestUser(db, "login@test.com", "collaborator", 1001, 500)

	body := map[string]string{
		"email":    "login@test.com",
		"password": "password123",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["token"] == nil || resp["token"] == "" {
		t.Error("expected token in response")
	}
	user := resp["user"].(map[string]interface{})
	if user["points"].(float64) != 500 {
		t.Errorf("expected 500 points, got %v", user["points"])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	seedTestUser(db, "login@test.com", "collaborator", 1001, 0)

	body := map[string]string{
		"email":    "login@test.com",
		"password": "wrong-password",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", body))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginDeactivatedUser(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	user, _ := seedTestUser(db, "blocked@test.com", "collaborator", 1001, 0)
	db.Model(&user).Update("is_active", false)

	body := map[string]string{
		"email":    "blocked@test.com",
		"password": "password123",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", body))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	seedTestUser(db, "refresh@test.com", "collaborator", 1001, 0)

	// Login to obtain a refresh token
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "refresh@test.com",
		"password": "password123",
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d: %s", w.Code, w.Body.String())
	}
	refreshToken := parseResponse(w)["refresh_token"].(string)

	// Exchange it
	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["token"] == nil || resp["refresh_token"] == nil {
		t.Fatal("expected new token pair")
	}

	// The old refresh token is now revoked
	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	}))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for reused refresh token, got %d", w.Code)
	}
}

func TestGetProfile(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	_, token := seedTestUser(db, "profile@test.com", "collaborator", 1001, 250)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/auth/profile", nil, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["email"] != "profile@test.com" {
		t.Errorf("expected email profile@test.com, got %v", resp["email"])
	}
	if resp["points"].(float64) != 250 {
		t.Errorf("expected 250 points, got %v", resp["points"])
	}
	if resp["user_id"].(float64) != 1001 {
		t.Errorf("expected employee number 1001, got %v", resp["user_id"])
	}
}

func TestGetProfileUnauthorized(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/auth/profile", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestChangePassword(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	_, token := seedTestUser(db, "changepw@test.com", "collaborator", 1001, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/auth/change-password", map[string]string{
		"old_password": "password123",
		"new_password": "newpassword456",
	}, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	// Old password no longer works
	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "changepw@test.com",
		"password": "password123",
	}))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 with old password, got %d", w.Code)
	}

	// New password works
	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "changepw@test.com",
		"password": "newpassword456",
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 with new password, got %d: %s", w.Code, w.Body.String())
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	_, token := seedTestUser(db, "changepw@test.com", "collaborator", 1001, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/auth/change-password", map[string]string{
		"old_password": "not-my-password",
		"new_password": "newpassword456",
	}, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminCreateUserWithPoints(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	_, adminToken := seedTestUser(db, "admin@test.com", "admin", 1, 0)

	body := map[string]interface{}{
		"email":       "seeded@test.com",
		"password":    "password123",
		"employee_id": 2001,
		"first_name":  "Seeded",
		"role":        "collaborator",
		"points":      1000,
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/admin/users", body, adminToken))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var user models.User
	if err := db.Where("user_id = ?", 2001).First(&user).Error; err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.Points != 1000 {
		t.Errorf("expected 1000 points, got %d", user.Points)
	}
}

func TestAdminCreateUserInvalidRole(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	_, adminToken := seedTestUser(db, "admin@test.com", "admin", 1, 0)

	body := map[string]interface{}{
		"email":       "badrole@test.com",
		"password":    "password123",
		"employee_id": 2001,
		"role":        "superuser",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/admin/users", body, adminToken))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminEndpointsRequireAdminRole(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	_, token := seedTestUser(db, "user@test.com", "collaborator", 1001, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/admin/users", nil, token))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminListUsersFilterByRole(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	_, adminToken := seedTestUser(db, "admin@test.com", "admin", 1, 0)
	seedTestUser(db, "hr@test.com", "rrhh", 2, 0)
	seedTestUser(db, "c1@test.com", "collaborator", 1001, 0)
	seedTestUser(db, "c2@test.com", "collaborator", 1002, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/admin/users?role=collaborator", nil, adminToken))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["total"].(float64) != 2 {
		t.Errorf("expected 2 collaborators, got %v", resp["total"])
	}
}

func TestAdminUpdateUserPoints(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	_, adminToken := seedTestUser(db, "admin@test.com", "admin", 1, 0)
	user, _ := seedTestUser(db, "target@test.com", "collaborator", 1001, 100)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/users/"+user.ID.String(), map[string]interface{}{
		"points": 750,
	}, adminToken))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated models.User
	db.Where("id = ?", user.ID).First(&updated)
	if updated.Points != 750 {
		t.Errorf("expected 750 points, got %d", updated.Points)
	}
}

func TestAdminCannotChangeOwnRole(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	admin, adminToken := seedTestUser(db, "admin@test.com", "admin", 1, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/users/"+admin.ID.String(), map[string]interface{}{
		"role": "collaborator",
	}, adminToken))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminDeactivateUser(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	_, adminToken := seedTestUser(db, "admin@test.com", "admin", 1, 0)
	user, _ := seedTestUser(db, "target@test.com", "collaborator", 1001, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/admin/users/"+user.ID.String(), nil, adminToken))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated models.User
	db.Where("id = ?", user.ID).First(&updated)
	if updated.IsActive {
		t.Error("expected user to be deactivated")
	}
}

func TestAdminCannotDeactivateSelf(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	admin, adminToken := seedTestUser(db, "admin@test.com", "admin", 1, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/admin/users/"+admin.ID.String(), nil, adminToken))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}
