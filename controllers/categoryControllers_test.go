package controllers_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestCreateCategoryConflict(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := seedUser(t, "admin@example.com", true)

	status, body := doReq(t, app, jsonReq(t, "POST", "/api/categories/",
		map[string]interface{}{"name": "Containers"}, adminToken))
	if status != fiber.StatusCreated {
		t.Fatalf("create category: status %d body %v", status, body)
	}
	status, _ = doReq(t, app, jsonReq(t, "POST", "/api/categories/",
		map[string]interface{}{"name": "Containers"}, adminToken))
	if status != fiber.StatusConflict {
		t.Fatalf("duplicate category: expected 409, got %d", status)
	}
}

func TestRenameCategoryPropagates(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := seedUser(t, "admin@example.com", true)

	qid := createQuestion(t, app, adminToken, "Which tool builds OCI images without a daemon?",
		"medium", "Podman", []string{"buildah", "dockerd"}, []int{0})

	var categoryID int
	if err := dbQueryRowScan(`SELECT id FROM question_categories WHERE name = $1`,
		[]interface{}{"Podman"}, &categoryID); err != nil {
		t.Fatalf("find category: %v", err)
	}

	status, body := doReq(t, app, jsonReq(t, "PUT", fmt.Sprintf("/api/categories/%d", categoryID),
		map[string]interface{}{"name": "Containers"}, adminToken))
	if status != fiber.StatusOK {
		t.Fatalf("rename category: status %d body %v", status, body)
	}

	status, body = doReq(t, app, jsonReq(t, "GET", fmt.Sprintf("/api/questions/%d", qid), nil, ""))
	if status != fiber.StatusOK {
		t.Fatalf("get question: status %d", status)
	}
	q := body["question"].(map[string]interface{})
	if got := q["category"].(string); got != "Containers" {
		t.Fatalf("expected question category renamed to Containers, got %q", got)
	}
}

func TestRenameCategoryConflict(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := seedUser(t, "admin@example.com", true)

	status, body := doReq(t, app, jsonReq(t, "POST", "/api/categories/",
		map[string]interface{}{"name": "SELinux"}, adminToken))
	if status != fiber.StatusCreated {
		t.Fatalf("create category: status %d", status)
	}
	first := int(body["category"].(map[string]interface{})["id"].(float64))

	status, _ = doReq(t, app, jsonReq(t, "POST", "/api/categories/",
		map[string]interface{}{"name": "Firewalld"}, adminToken))
	if status != fiber.StatusCreated {
		t.Fatalf("create category: status %d", status)
	}

	status, _ = doReq(t, app, jsonReq(t, "PUT", fmt.Sprintf("/api/categories/%d", first),
		map[string]interface{}{"name": "Firewalld"}, adminToken))
	if status != fiber.StatusConflict {
		t.Fatalf("rename onto taken name: expected 409, got %d", status)
	}
}

func TestDeleteCategoryDetachesQuestions(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := seedUser(t, "admin@example.com", true)

	qid := createQuestion(t, app, adminToken, "Which command relabels a file's SELinux context?",
		"hard", "SELinux", []string{"restorecon", "chmod"}, []int{0})

	var categoryID int
	if err := dbQueryRowScan(`SELECT id FROM question_categories WHERE name = $1`,
		[]interface{}{"SELinux"}, &categoryID); err != nil {
		t.Fatalf("find category: %v", err)
	}

	status, body := doReq(t, app, jsonReq(t, "DELETE", fmt.Sprintf("/api/categories/%d", categoryID), nil, adminToken))
	if status != fiber.StatusOK {
		t.Fatalf("delete category: status %d body %v", status, body)
	}
	if got := int(body["detached_questions"].(float64)); got != 1 {
		t.Fatalf("expected 1 detached question, got %d", got)
	}

	// Question survives with the stale name and no category reference.
	status, body = doReq(t, app, jsonReq(t, "GET", fmt.Sprintf("/api/questions/%d", qid), nil, ""))
	if status != fiber.StatusOK {
		t.Fatalf("get question: status %d", status)
	}
	q := body["question"].(map[string]interface{})
	if got := q["category"].(string); got != "SELinux" {
		t.Fatalf("expected stale category name kept, got %q", got)
	}
	if _, present := q["category_id"]; present {
		t.Fatalf("expected category_id cleared, got %v", q["category_id"])
	}
}
