package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/crypto"
	"github.com/taskdeck/taskdeck/internal/database"
	"github.com/taskdeck/taskdeck/internal/handler"
	"github.com/taskdeck/taskdeck/internal/metrics"
	"github.com/taskdeck/taskdeck/internal/middleware"
	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/sessionwatch"
	"github.com/taskdeck/taskdeck/internal/store"
)

// TestServer wraps a test HTTP server with helpers
type TestServer struct {
	Server  *httptest.Server
	Store   *store.Store
	Config  *config.Config
	Handler *handler.Handler
	Broker  *sessionwatch.Broker
	DB      *database.DB
	T       *testing.T
}

// NewTestServer creates a test server backed by a file-based SQLite database
// in a temp directory.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := &config.Config{
		Port:            8080,
		CORSOrigins:     []string{"*"},
		DatabaseDSN:     fmt.Sprintf("sqlite3://%s/test.db", t.TempDir()),
		DatabaseDriver:  "sqlite",
		SessionSecret:   []byte("test-session-secret-32-bytes-long!!"),
		SessionTTL:      24 * time.Hour,
		VerificationTTL: time.Hour,
	}

	db, err := database.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	s := store.New(db.DB)
	broker := sessionwatch.NewBroker()
	collector := metrics.NewCollector()

	h := handler.New(s, cfg, broker, collector)

	r := setupRouter(cfg, h)
	server := httptest.NewServer(r)

	ts := &TestServer{
		Server:  server,
		Store:   s,
		Config:  cfg,
		Handler: h,
		Broker:  broker,
		DB:      db,
		T:       t,
	}

	t.Cleanup(func() {
		server.Close()
		db.Close()
	})

	return ts
}

// setupRouter creates the router with all routes (matches main.go, minus the
// per-client rate limiter so tests can hammer the auth endpoints)
func setupRouter(cfg *config.Config, h *handler.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.AuthSignUp)
		r.Post("/login", h.AuthLogin)
		r.Post("/logout", h.AuthLogout)
		r.Get("/verify", h.AuthVerify)
		r.With(middleware.Auth(h.AuthService(), h.ProfileService())).Get("/me", h.AuthMe)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(h.AuthService(), h.ProfileService()))

		r.Get("/events", h.Events)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.TasksList)
			r.Post("/", h.TasksCreate)
			r.Post("/{taskId}/status", h.TasksAdvanceStatus)
			r.Delete("/{taskId}", h.TasksDelete)
		})

		r.Route("/partners", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", h.PartnersList)
			r.Post("/", h.PartnersAdd)
			r.Delete("/{partnerId}", h.PartnersRemove)
		})

		r.Get("/stats", h.StatsGet)
	})

	return r
}

// TestProfile represents a seeded account with a valid session
type TestProfile struct {
	Profile *model.Profile
	Session *model.UserSession
	Token   string
}

// seedProfile creates a verified profile and a session for it
func (ts *TestServer) seedProfile(email, role string) *TestProfile {
	ts.T.Helper()

	hash, err := crypto.HashPassword("correct horse battery")
	if err != nil {
		ts.T.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now()
	profile := &model.Profile{
		Name:         fmt.Sprintf("Test %s", email),
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		VerifiedAt:   &now,
	}
	if err := ts.Store.CreateProfile(context.Background(), profile); err != nil {
		ts.T.Fatalf("Failed to create test profile: %v", err)
	}

	plainToken, err := crypto.NewToken()
	if err != nil {
		ts.T.Fatalf("Failed to generate session token: %v", err)
	}
	session := &model.UserSession{
		ProfileID: profile.ID,
		TokenHash: crypto.HashToken(plainToken),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	if err := ts.Store.CreateUserSession(context.Background(), session); err != nil {
		ts.T.Fatalf("Failed to create test session: %v", err)
	}

	return &TestProfile{Profile: profile, Session: session, Token: plainToken}
}

// CreateTestAdmin seeds a verified admin with an active session
func (ts *TestServer) CreateTestAdmin(email string) *TestProfile {
	ts.T.Helper()
	return ts.seedProfile(email, model.RoleAdmin)
}

// CreateTestPartner seeds a verified partner with an active session
func (ts *TestServer) CreateTestPartner(email string) *TestProfile {
	ts.T.Helper()
	return ts.seedProfile(email, model.RolePartner)
}

// CreateTestTask inserts a task directly through the store
func (ts *TestServer) CreateTestTask(title, project string, assignedTo *string) *model.Task {
	ts.T.Helper()

	task := &model.Task{
		Title:      title,
		Project:    project,
		AssignedTo: assignedTo,
		Status:     model.StatusPending,
	}
	if err := ts.Store.CreateTask(context.Background(), task); err != nil {
		ts.T.Fatalf("Failed to create test task: %v", err)
	}
	return task
}

// Client returns an HTTP client with a cookie jar for the test server
func (ts *TestServer) Client() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// AuthenticatedClient returns a client that sends the profile's session cookie
func (ts *TestServer) AuthenticatedClient(p *TestProfile) *TestClient {
	return &TestClient{
		ts:    ts,
		token: p.Token,
	}
}

// TestClient is a helper for making authenticated requests
type TestClient struct {
	ts    *TestServer
	token string
}

// Get makes an authenticated GET request
func (tc *TestClient) Get(path string) *http.Response {
	tc.ts.T.Helper()
	return tc.do("GET", path, nil)
}

// Post makes an authenticated POST request
func (tc *TestClient) Post(path string, body interface{}) *http.Response {
	tc.ts.T.Helper()
	return tc.do("POST", path, body)
}

// Delete makes an authenticated DELETE request
func (tc *TestClient) Delete(path string) *http.Response {
	tc.ts.T.Helper()
	return tc.do("DELETE", path, nil)
}

func (tc *TestClient) do(method, path string, body interface{}) *http.Response {
	tc.ts.T.Helper()

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			tc.ts.T.Fatalf("Failed to marshal request body: %v", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, tc.ts.Server.URL+path, bodyReader)
	if err != nil {
		tc.ts.T.Fatalf("Failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{
		Name:  "taskdeck_session",
		Value: tc.token,
	})

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		tc.ts.T.Fatalf("Request failed: %v", err)
	}

	return resp
}

// postJSON posts a JSON body using an unauthenticated client
func postJSON(t *testing.T, client *http.Client, url string, body interface{}) *http.Response {
	t.Helper()

	jsonBody, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request body: %v", err)
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

// ParseJSON parses the response body as JSON
func ParseJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("Failed to parse JSON: %v\nBody: %s", err, string(body))
	}
}

// AssertStatus checks the response status code
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Errorf("Expected status %d, got %d\nBody: %s", expected, resp.StatusCode, string(body))
	}
}
