package controllers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cliflow/cliflow_backend/models"
	"github.com/cliflow/cliflow_backend/routers"
	"github.com/cliflow/cliflow_backend/util"

	_ "modernc.org/sqlite" // driver for "sqlite"
)

var testCfg = util.Config{
	DBDriver:  "sqlite",
	JWTSecret: "test-secret",
	TokenTTL:  time.Hour,
}

func TestMain(m *testing.M) {
	// Shared in-memory database. One connection keeps every query on the
	// same memory instance.
	db, err := sql.Open("sqlite", "file:cliflow_test?mode=memory&cache=shared&_pragma=foreign_keys(1)")
	if err != nil {
		fmt.Fprintln(os.Stderr, "open test db:", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(1)

	util.DB = db
	util.DBDriver = "sqlite"

	os.Exit(m.Run())
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	if err := util.DropAllTables(); err != nil {
		t.Fatalf("drop tables: %v", err)
	}
	if err := util.CreateTableIfNotExists(); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	app := fiber.New()
	routers.SetupRoutes(app, testCfg)
	return app
}

// seedUser inserts a user row directly and mints a token for it.
func seedUser(t *testing.T, email string, superuser bool) (models.User, string) {
	t.Helper()
	var id int
	err := util.DB.QueryRow(`INSERT INTO users (email, is_superuser) VALUES ($1, $2) RETURNING id`,
		email, superuser).Scan(&id)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	user := models.User{ID: id, Email: email, IsActive: true, IsSuperuser: superuser}
	token, err := util.GenerateToken(testCfg, user)
	if err != nil {
		t.Fatalf("mint token for %s: %v", email, err)
	}
	return user, token
}

func jsonReq(t *testing.T, method, target string, body interface{}, token string) *http.Request {
	t.Helper()
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, target, rd)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func doReq(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	var parsed map[string]interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			t.Fatalf("parse response %q: %v", raw, err)
		}
	}
	return resp.StatusCode, parsed
}

func dbQueryRowScan(query string, args []interface{}, dest ...interface{}) error {
	return util.DB.QueryRow(query, args...).Scan(dest...)
}

func dbExec(query string, args ...interface{}) (sql.Result, error) {
	return util.DB.Exec(query, args...)
}

// createQuestion drives the write API and returns the new question id.
func createQuestion(t *testing.T, app *fiber.App, token, text, difficulty, category string, answers []string, correct []int) int {
	t.Helper()
	status, body := doReq(t, app, jsonReq(t, "POST", "/api/questions/", map[string]interface{}{
		"text":            text,
		"difficulty":      difficulty,
		"category":        category,
		"answers":         answers,
		"correct_answers": correct,
	}, token))
	if status != fiber.StatusCreated {
		t.Fatalf("create question %q: status %d body %v", text, status, body)
	}
	return int(body["question_id"].(float64))
}

// createTopic drives the theory API and returns the new topic id.
func createTopic(t *testing.T, app *fiber.App, token, title string, parentID *int) int {
	t.Helper()
	payload := map[string]interface{}{"title": title}
	if parentID != nil {
		payload["parent_id"] = *parentID
	}
	status, body := doReq(t, app, jsonReq(t, "POST", "/api/theory/topics", payload, token))
	if status != fiber.StatusCreated {
		t.Fatalf("create topic %q: status %d body %v", title, status, body)
	}
	topic := body["topic"].(map[string]interface{})
	return int(topic["id"].(float64))
}
