package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math_quest_backend/internal/config"
	"math_quest_backend/internal/curriculum"
	"math_quest_backend/internal/model"
	"math_quest_backend/pkg/database"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const appCurriculum = `
concepts:
  - slug: number_systems
    name: Number Systems
    description: Rational and irrational numbers
    category: Numbers and Operations
    lesson_content: "## Number Systems"
    problems:
      - question: Is √16 rational or irrational?
        options: ["Rational", "Irrational"]
        correct_answer: Rational
  - slug: exponents_powers
    name: Exponents and Powers
    description: Power rules
    category: Numbers and Operations
    prerequisites: [number_systems]
    lesson_content: "## Exponents"
    problems:
      - question: What is 5⁰?
        correct_answer: "1"
`

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestApp(t *testing.T) *App {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLitePath = filepath.Join(dir, "app.db")
	cfg.JWT.Secret = "app-test-secret-app-test-secret-123"
	cfg.JWT.ExpireTime = time.Hour
	cfg.Storage.Type = "local"
	cfg.Storage.LocalPath = filepath.Join(dir, "uploads")
	cfg.CORS.AllowedOrigins = []string{"*"}
	cfg.RateLimit.MaxRequests = 10000
	cfg.RateLimit.WindowMinutes = 1
	cfg.Curriculum.SeedPath = filepath.Join(dir, "curriculum.yaml")
	if err := os.WriteFile(cfg.Curriculum.SeedPath, []byte(appCurriculum), 0644); err != nil {
		t.Fatalf("write curriculum: %v", err)
	}

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	a := New(cfg, db, nil)
	doc, err := curriculum.Parse([]byte(appCurriculum))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := a.services.curriculum.Seed(context.Background(), doc); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return a
}

func (a *App) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func (a *App) register(t *testing.T, email string) {
	t.Helper()
	code, _ := a.do(t, http.MethodPost, "/api/register", "", gin.H{
		"name": "Student", "email": email, "password": "password123",
	})
	if code != http.StatusCreated {
		t.Fatalf("register status = %d", code)
	}
}

func (a *App) login(t *testing.T, email string) string {
	t.Helper()
	a.register(t, email)
	return a.token(t, email)
}

func (a *App) token(t *testing.T, email string) string {
	t.Helper()
	code, env := a.do(t, http.MethodPost, "/api/login", "", gin.H{
		"email": email, "password": "password123",
	})
	if code != http.StatusOK {
		t.Fatalf("login status = %d", code)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("login data = %s", env.Data)
	}
	return data.Token
}

type conceptItem struct {
	ID        uint   `json:"id"`
	Slug      string `json:"slug"`
	Available bool   `json:"available"`
	Completed bool   `json:"completed"`
}

func TestStudentFlow(t *testing.T) {
	a := newTestApp(t)
	token := a.login(t, "student@example.com")

	code, env := a.do(t, http.MethodGet, "/api/concepts", token, nil)
	if code != http.StatusOK {
		t.Fatalf("list status = %d", code)
	}
	var concepts []conceptItem
	if err := json.Unmarshal(env.Data, &concepts); err != nil {
		t.Fatalf("decode concepts: %v", err)
	}
	if len(concepts) != 2 || !concepts[0].Available || concepts[1].Available {
		t.Fatalf("concepts = %+v", concepts)
	}

	code, env = a.do(t, http.MethodGet, "/api/concepts/exponents_powers", token, nil)
	if code != http.StatusForbidden {
		t.Fatalf("locked detail status = %d", code)
	}
	var locked struct {
		Missing []string `json:"missing"`
	}
	if err := json.Unmarshal(env.Data, &locked); err != nil || len(locked.Missing) != 1 {
		t.Errorf("missing = %s", env.Data)
	}

	code, env = a.do(t, http.MethodPost, "/api/concepts/number_systems/progress", token, gin.H{
		"score": "90", "time_spent": 120,
	})
	if code != http.StatusOK {
		t.Fatalf("progress status = %d", code)
	}
	var update struct {
		NewScore  int  `json:"new_score"`
		Completed bool `json:"completed"`
	}
	json.Unmarshal(env.Data, &update)
	if update.NewScore != 90 || !update.Completed {
		t.Errorf("update = %+v", update)
	}

	code, _ = a.do(t, http.MethodGet, "/api/concepts/exponents_powers", token, nil)
	if code != http.StatusOK {
		t.Errorf("unlocked detail status = %d", code)
	}

	code, env = a.do(t, http.MethodGet, "/api/progress/achievements", token, nil)
	if code != http.StatusOK {
		t.Fatalf("achievements status = %d", code)
	}
	var badges []struct {
		Name   string `json:"name"`
		Earned bool   `json:"earned"`
	}
	json.Unmarshal(env.Data, &badges)
	if len(badges) != 7 || !badges[0].Earned {
		t.Errorf("badges = %+v", badges)
	}
}

func TestQuizSubmission(t *testing.T) {
	a := newTestApp(t)
	token := a.login(t, "quiz@example.com")

	concept, err := a.services.concept.BySlug(context.Background(), "number_systems")
	if err != nil {
		t.Fatalf("BySlug: %v", err)
	}
	code, env := a.do(t, http.MethodGet, fmt.Sprintf("/api/practice/quiz/%d", concept.ID), token, nil)
	if code != http.StatusOK {
		t.Fatalf("quiz status = %d", code)
	}
	var quiz struct {
		Problems []struct {
			ID uint `json:"id"`
		} `json:"problems"`
	}
	if err := json.Unmarshal(env.Data, &quiz); err != nil || len(quiz.Problems) != 1 {
		t.Fatalf("quiz data = %s", env.Data)
	}

	code, env = a.do(t, http.MethodPost, "/api/practice/quiz/submit", token, gin.H{
		"concept_id": concept.ID,
		"answers":    gin.H{fmt.Sprint(quiz.Problems[0].ID): "rational"},
		"total_time": 30,
	})
	if code != http.StatusOK {
		t.Fatalf("submit status = %d", code)
	}
	var result struct {
		Percentage float64 `json:"percentage"`
	}
	json.Unmarshal(env.Data, &result)
	if result.Percentage != 100 {
		t.Errorf("percentage = %v", result.Percentage)
	}
}

func TestGuestEndpoints(t *testing.T) {
	a := newTestApp(t)

	code, _ := a.do(t, http.MethodGet, "/api/guest/concepts/exponents_powers", "", nil)
	if code != http.StatusOK {
		t.Errorf("guest detail status = %d, want ungated 200", code)
	}

	problems, err := a.services.concept.Problems(context.Background(), "exponents_powers")
	if err != nil {
		t.Fatalf("Problems: %v", err)
	}
	path := fmt.Sprintf("/api/guest/practice/submit/%d", problems[0].ID)

	code, env := a.do(t, http.MethodPost, path, "", gin.H{"answer": 1})
	if code != http.StatusOK {
		t.Fatalf("guest submit status = %d", code)
	}
	var result struct {
		Correct bool `json:"correct"`
	}
	json.Unmarshal(env.Data, &result)
	if !result.Correct {
		t.Errorf("numeric answer should be graded as \"1\": %s", env.Data)
	}
}

func TestErrorStatuses(t *testing.T) {
	a := newTestApp(t)
	token := a.login(t, "errors@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/api/concepts", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/concepts", "nope", http.StatusUnauthorized},
		{"unknown concept", http.MethodGet, "/api/concepts/unknown", token, http.StatusNotFound},
		{"invalid problem id", http.MethodGet, "/api/practice/problems/abc", token, http.StatusNotFound},
		{"missing problem", http.MethodGet, "/api/practice/problems/9999", token, http.StatusNotFound},
		{"guest missing concept", http.MethodGet, "/api/guest/practice/9999", "", http.StatusNotFound},
		{"admin only", http.MethodPost, "/api/admin/curriculum/reload", token, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := a.do(t, tt.method, tt.path, tt.token, nil)
			if code != tt.want {
				t.Errorf("status = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestDuplicateRegistration(t *testing.T) {
	a := newTestApp(t)
	a.login(t, "dup@example.com")

	code, _ := a.do(t, http.MethodPost, "/api/register", "", gin.H{
		"name": "Again", "email": "DUP@example.com", "password": "password123",
	})
	if code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	a := newTestApp(t)

	code, _ := a.do(t, http.MethodGet, "/api/health", "", nil)
	if code != http.StatusOK {
		t.Errorf("health status = %d", code)
	}
	code, _ = a.do(t, http.MethodGet, "/metrics", "", nil)
	if code != http.StatusOK {
		t.Errorf("metrics status = %d", code)
	}
}

func TestSwaggerDoc(t *testing.T) {
	a := newTestApp(t)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("doc.json status = %d", w.Code)
	}

	var doc struct {
		BasePath string                     `json:"basePath"`
		Info     struct{ Title string }     `json:"info"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode doc.json: %v", err)
	}
	if doc.BasePath != "/api" || doc.Info.Title != "Math Quest API" {
		t.Errorf("basePath = %q, title = %q", doc.BasePath, doc.Info.Title)
	}
	for _, path := range []string{"/login", "/concepts/{slug}", "/practice/quiz/submit", "/admin/users/role"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("doc.json is missing %s", path)
		}
	}

	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	if w.Code != http.StatusOK {
		t.Errorf("swagger ui status = %d", w.Code)
	}
}

func TestAdminEndpoints(t *testing.T) {
	a := newTestApp(t)
	a.register(t, "staff@example.com")
	a.register(t, "pupil@example.com")

	if _, err := a.services.user.SetRole("Staff@example.com", model.Admin); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	adminToken := a.token(t, "staff@example.com")

	code, env := a.do(t, http.MethodPost, "/api/admin/curriculum/reload", adminToken, nil)
	if code != http.StatusOK {
		t.Fatalf("reload status = %d (%s)", code, env.Message)
	}
	var seeded struct {
		ConceptsUpdated int `json:"conceptsUpdated"`
		ProblemsCreated int `json:"problemsCreated"`
	}
	json.Unmarshal(env.Data, &seeded)
	if seeded.ConceptsUpdated != 2 || seeded.ProblemsCreated != 0 {
		t.Errorf("reload result = %s", env.Data)
	}

	code, _ = a.do(t, http.MethodPut, "/api/admin/users/role", adminToken, gin.H{
		"email": "pupil@example.com", "role": "admin",
	})
	if code != http.StatusOK {
		t.Errorf("update role status = %d", code)
	}
	pupilToken := a.token(t, "pupil@example.com")
	code, _ = a.do(t, http.MethodPost, "/api/admin/curriculum/reload", pupilToken, nil)
	if code != http.StatusOK {
		t.Errorf("promoted user reload status = %d", code)
	}

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"unknown role", gin.H{"email": "pupil@example.com", "role": "moderator"}, http.StatusBadRequest},
		{"unknown user", gin.H{"email": "ghost@example.com", "role": "admin"}, http.StatusNotFound},
		{"missing email", gin.H{"role": "admin"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := a.do(t, http.MethodPut, "/api/admin/users/role", adminToken, tt.body)
			if code != tt.want {
				t.Errorf("status = %d, want %d", code, tt.want)
			}
		})
	}
}

func (a *App) upload(t *testing.T, token, slug, filename string) (int, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	part.Write([]byte("\x89PNG fake image"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/concepts/"+slug+"/illustration", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var env envelope
	json.Unmarshal(w.Body.Bytes(), &env)
	var data struct {
		URL string `json:"url"`
	}
	json.Unmarshal(env.Data, &data)
	return w.Code, data.URL
}

func TestReplaceIllustrationRemovesOldObject(t *testing.T) {
	a := newTestApp(t)
	a.register(t, "editor@example.com")
	if _, err := a.services.user.SetRole("editor@example.com", model.Admin); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	token := a.token(t, "editor@example.com")

	localFile := func(url string) string {
		return filepath.Join(a.Config.Storage.LocalPath, filepath.FromSlash(strings.TrimPrefix(url, "/uploads/")))
	}

	code, first := a.upload(t, token, "number_systems", "line.png")
	if code != http.StatusOK || first == "" {
		t.Fatalf("first upload status = %d url = %q", code, first)
	}
	if _, err := os.Stat(localFile(first)); err != nil {
		t.Fatalf("first object missing: %v", err)
	}

	code, second := a.upload(t, token, "number_systems", "line.png")
	if code != http.StatusOK || second == first {
		t.Fatalf("second upload status = %d url = %q", code, second)
	}
	if _, err := os.Stat(localFile(first)); !os.IsNotExist(err) {
		t.Errorf("replaced object still stored: %v", err)
	}
	if _, err := os.Stat(localFile(second)); err != nil {
		t.Errorf("new object missing: %v", err)
	}

	concept, err := a.services.concept.BySlug(context.Background(), "number_systems")
	if err != nil {
		t.Fatalf("BySlug: %v", err)
	}
	if concept.IllustrationURL != second {
		t.Errorf("IllustrationURL = %q, want %q", concept.IllustrationURL, second)
	}
}
