package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/schedule-app/backend/internal/config"
	"github.com/schedule-app/backend/internal/model"
	"github.com/schedule-app/backend/internal/service"
	"github.com/schedule-app/backend/internal/token"
	"github.com/sirupsen/logrus"
)

// memUserStore is a minimal in-memory UserStore for exercising the
// handlers end to end.
type memUserStore struct {
	users  map[string]*model.User
	nextID int
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]*model.User{}}
}

func memHash(password string) string { return "hashed:" + password }

func (m *memUserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, service.ErrUserNotExists
}

func (m *memUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, service.ErrUserNotExists
}

func (m *memUserStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, service.ErrUserNotExists
}

func (m *memUserStore) List(ctx context.Context) ([]*model.User, error) {
	var out []*model.User
	for _, u := range m.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memUserStore) Create(ctx context.Context, user *model.User, password string) (*model.User, error) {
	if len(password) < 8 {
		return nil, &service.PasswordPolicyError{Reasons: []string{"must be at least 8 characters"}}
	}
	m.nextID++
	copied := *user
	copied.ID = fmt.Sprintf("user-%d", m.nextID)
	copied.PasswordHash = memHash(password)
	copied.CreatedAt = time.Now()
	m.users[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (m *memUserStore) VerifyPassword(user *model.User, password string) error {
	if user.PasswordHash != memHash(password) {
		return service.ErrPasswordMismatch
	}
	return nil
}

func (m *memUserStore) UpdatePassword(ctx context.Context, id, newPassword string) error {
	u, ok := m.users[id]
	if !ok {
		return service.ErrUserNotExists
	}
	u.PasswordHash = memHash(newPassword)
	return nil
}

func (m *memUserStore) UpdateProfile(ctx context.Context, user *model.User) (*model.User, error) {
	stored, ok := m.users[user.ID]
	if !ok {
		return nil, service.ErrUserNotExists
	}
	stored.Username = user.Username
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.Phone = user.Phone
	copied := *stored
	return &copied, nil
}

func testCodec(t *testing.T) *token.Codec {
	t.Helper()
	codec, err := token.NewCodec(config.JWTConfig{
		SecretKey:       "0123456789abcdef0123456789abcdef",
		Issuer:          "schedule-app",
		Audience:        "schedule-app-client",
		ExpirationHours: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	return codec
}

func newTestRouter(t *testing.T) (*gin.Engine, *memUserStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	codec := testCodec(t)
	store := newMemUserStore()
	authService := service.NewAuthService(store, codec, log)
	accountHandler := NewAccountHandler(authService, log)

	r := gin.New()
	account := r.Group("/api/account")
	{
		account.POST("/register", accountHandler.Register)
		account.POST("/login", accountHandler.Login)
		account.POST("/logout", accountHandler.Logout)

		protected := account.Group("")
		protected.Use(AuthMiddleware(codec, log))
		protected.GET("/users", accountHandler.ListUsers)
		protected.PUT("/change-password", accountHandler.ChangePassword)
		protected.PUT("/update-profile", accountHandler.UpdateProfile)
	}
	return r, store
}

func doJSON(r *gin.Engine, method, path, body, bearer string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	r.ServeHTTP(w, req)
	return w
}

const registerBody = `{"username":"cvsu08","password":"secret123","email":"a@b.com","firstName":"Ana","lastName":"Cruz"}`

func TestRegisterAndLoginFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/account/register", registerBody, "")
	if w.Code != http.StatusOK {
		t.Fatalf("register: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("register response leaks password field: %s", w.Body.String())
	}

	w = doJSON(r, http.MethodPost, "/api/account/login", `{"username":"cvsu08","password":"secret123"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp model.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Token == "" {
		t.Fatal("expected non-empty token")
	}
	if !resp.Expiration.After(time.Now()) {
		t.Fatalf("expiration %v not in the future", resp.Expiration)
	}
	if resp.User.ID == "" || resp.User.Username != "cvsu08" || resp.User.Email != "a@b.com" {
		t.Fatalf("unexpected user projection: %+v", resp.User)
	}
}

func TestRegisterValidationResponse(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/account/register", `{"username":"","password":"secret123","email":"bad"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var resp model.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Errors) == 0 {
		t.Fatalf("expected field errors, got %s", w.Body.String())
	}
}

func TestRegisterConflictResponses(t *testing.T) {
	r, _ := newTestRouter(t)

	if w := doJSON(r, http.MethodPost, "/api/account/register", registerBody, ""); w.Code != http.StatusOK {
		t.Fatalf("seed register failed: %d", w.Code)
	}

	// Same email, different username.
	w := doJSON(r, http.MethodPost, "/api/account/register",
		`{"username":"other01","password":"secret123","email":"a@b.com","firstName":"B","lastName":"C"}`, "")
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "email") {
		t.Fatalf("expected email conflict 400, got %d: %s", w.Code, w.Body.String())
	}

	// Same username, different email.
	w = doJSON(r, http.MethodPost, "/api/account/register",
		`{"username":"cvsu08","password":"secret123","email":"x@b.com","firstName":"B","lastName":"C"}`, "")
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Username") {
		t.Fatalf("expected username conflict 400, got %d: %s", w.Code, w.Body.String())
	}
}

// Wrong password and unknown username must produce byte-identical
// responses.
func TestLoginEnumerationResistance(t *testing.T) {
	r, _ := newTestRouter(t)

	if w := doJSON(r, http.MethodPost, "/api/account/register", registerBody, ""); w.Code != http.StatusOK {
		t.Fatalf("seed register failed: %d", w.Code)
	}

	wrongPassword := doJSON(r, http.MethodPost, "/api/account/login", `{"username":"cvsu08","password":"wrongpass1"}`, "")
	unknownUser := doJSON(r, http.MethodPost, "/api/account/login", `{"username":"nobody","password":"whatever1"}`, "")

	if wrongPassword.Code != http.StatusBadRequest || unknownUser.Code != http.StatusBadRequest {
		t.Fatalf("expected 400/400, got %d/%d", wrongPassword.Code, unknownUser.Code)
	}
	if !bytes.Equal(wrongPassword.Body.Bytes(), unknownUser.Body.Bytes()) {
		t.Fatalf("bodies differ: %s vs %s", wrongPassword.Body.String(), unknownUser.Body.String())
	}
}

func loginToken(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/account/login",
		fmt.Sprintf(`{"username":%q,"password":%q}`, username, password), "")
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d: %s", w.Code, w.Body.String())
	}
	var resp model.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.Token
}

func TestListUsersRequiresAuth(t *testing.T) {
	r, _ := newTestRouter(t)

	if w := doJSON(r, http.MethodGet, "/api/account/users", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	if w := doJSON(r, http.MethodPost, "/api/account/register", registerBody, ""); w.Code != http.StatusOK {
		t.Fatalf("seed register failed: %d", w.Code)
	}
	bearer := loginToken(t, r, "cvsu08", "secret123")

	w := doJSON(r, http.MethodGet, "/api/account/users", "", bearer)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp model.UsersResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || len(resp.Users) != 1 {
		t.Fatalf("unexpected listing: %+v", resp)
	}
}

func TestChangePasswordFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	if w := doJSON(r, http.MethodPost, "/api/account/register", registerBody, ""); w.Code != http.StatusOK {
		t.Fatalf("seed register failed: %d", w.Code)
	}
	bearer := loginToken(t, r, "cvsu08", "secret123")

	w := doJSON(r, http.MethodPut, "/api/account/change-password",
		`{"currentPassword":"secret123","newPassword":"newsecret456"}`, bearer)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Old password is out, new one works.
	w = doJSON(r, http.MethodPost, "/api/account/login", `{"username":"cvsu08","password":"secret123"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("old password still accepted: %d", w.Code)
	}
	loginToken(t, r, "cvsu08", "newsecret456")
}

func TestChangePasswordWrongCurrentOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	if w := doJSON(r, http.MethodPost, "/api/account/register", registerBody, ""); w.Code != http.StatusOK {
		t.Fatalf("seed register failed: %d", w.Code)
	}
	bearer := loginToken(t, r, "cvsu08", "secret123")

	w := doJSON(r, http.MethodPut, "/api/account/change-password",
		`{"currentPassword":"nope12345","newPassword":"newsecret456"}`, bearer)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestChangePasswordDesyncedStore(t *testing.T) {
	r, store := newTestRouter(t)

	if w := doJSON(r, http.MethodPost, "/api/account/register", registerBody, ""); w.Code != http.StatusOK {
		t.Fatalf("seed register failed: %d", w.Code)
	}
	bearer := loginToken(t, r, "cvsu08", "secret123")

	// Delete the user behind the valid token.
	for id := range store.users {
		delete(store.users, id)
	}

	w := doJSON(r, http.MethodPut, "/api/account/change-password",
		`{"currentPassword":"secret123","newPassword":"newsecret456"}`, bearer)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for desynced store, got %d", w.Code)
	}
}

func TestUpdateProfileFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	if w := doJSON(r, http.MethodPost, "/api/account/register", registerBody, ""); w.Code != http.StatusOK {
		t.Fatalf("seed register failed: %d", w.Code)
	}
	bearer := loginToken(t, r, "cvsu08", "secret123")

	w := doJSON(r, http.MethodPut, "/api/account/update-profile",
		`{"firstName":"Anabel","phone":"555-0101"}`, bearer)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp model.ProfileResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.User.FirstName != "Anabel" || resp.User.Phone != "555-0101" {
		t.Fatalf("unexpected profile: %+v", resp.User)
	}
	if resp.User.LastName != "Cruz" {
		t.Fatalf("blank lastName must stay untouched: %+v", resp.User)
	}
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/account/logout", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Logged out") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}
