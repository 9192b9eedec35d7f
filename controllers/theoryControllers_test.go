package controllers_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestCreateTopicUnderMissingParent(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := seedUser(t, "admin@example.com", true)

	status, _ := doReq(t, app, jsonReq(t, "POST", "/api/theory/topics",
		map[string]interface{}{"title": "Orphan", "parent_id": 12345}, adminToken))
	if status != fiber.StatusNotFound {
		t.Fatalf("missing parent: expected 404, got %d", status)
	}
}

func TestReparentRejectsSelfAndCycles(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := seedUser(t, "admin@example.com", true)

	a := createTopic(t, app, adminToken, "Storage", nil)
	b := createTopic(t, app, adminToken, "LVM", &a)
	c := createTopic(t, app, adminToken, "Thin provisioning", &b)

	status, _ := doReq(t, app, jsonReq(t, "PUT", fmt.Sprintf("/api/theory/topics/%d", a),
		map[string]interface{}{"parent_id": a}, adminToken))
	if status != fiber.StatusBadRequest {
		t.Fatalf("self parent: expected 400, got %d", status)
	}

	// a -> b -> c; moving a under c would close the loop.
	status, body := doReq(t, app, jsonReq(t, "PUT", fmt.Sprintf("/api/theory/topics/%d", a),
		map[string]interface{}{"parent_id": c}, adminToken))
	if status != fiber.StatusBadRequest {
		t.Fatalf("cycle: expected 400, got %d body %v", status, body)
	}
	if msg := body["message"].(string); !strings.Contains(msg, "cycle") {
		t.Fatalf("expected cycle message, got %q", msg)
	}

	// A legal move still works: c detached and re-rooted under a directly.
	status, _ = doReq(t, app, jsonReq(t, "PUT", fmt.Sprintf("/api/theory/topics/%d", c),
		map[string]interface{}{"parent_id": a}, adminToken))
	if status != fiber.StatusOK {
		t.Fatalf("legal reparent: status %d", status)
	}
}

func TestReparentToRootWithZero(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := seedUser(t, "admin@example.com", true)

	a := createTopic(t, app, adminToken, "Networking", nil)
	b := createTopic(t, app, adminToken, "Bonding", &a)

	status, body := doReq(t, app, jsonReq(t, "PUT", fmt.Sprintf("/api/theory/topics/%d", b),
		map[string]interface{}{"parent_id": 0}, adminToken))
	if status != fiber.StatusOK {
		t.Fatalf("detach: status %d body %v", status, body)
	}
	topic := body["topic"].(map[string]interface{})
	if topic["parent_id"] != nil {
		t.Fatalf("expected nil parent after detach, got %v", topic["parent_id"])
	}

	// Root listing now shows both.
	status, body = doReq(t, app, jsonReq(t, "GET", "/api/theory/topics", nil, ""))
	if status != fiber.StatusOK {
		t.Fatalf("list roots: status %d", status)
	}
	if got := len(body["topics"].([]interface{})); got != 2 {
		t.Fatalf("expected 2 root topics, got %d", got)
	}
}

func TestDeleteTopicBlockedByChildren(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := seedUser(t, "admin@example.com", true)

	a := createTopic(t, app, adminToken, "Security", nil)
	createTopic(t, app, adminToken, "SELinux modes", &a)
	createTopic(t, app, adminToken, "Firewalld zones", &a)

	status, body := doReq(t, app, jsonReq(t, "DELETE", fmt.Sprintf("/api/theory/topics/%d", a), nil, adminToken))
	if status != fiber.StatusBadRequest {
		t.Fatalf("delete with children: expected 400, got %d", status)
	}
	if msg := body["message"].(string); !strings.Contains(msg, "2 child topics") {
		t.Fatalf("expected child count in message, got %q", msg)
	}
}

func TestDeleteLeafTopicRemovesContentAndResources(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := seedUser(t, "admin@example.com", true)

	topicID := createTopic(t, app, adminToken, "Swap", nil)

	status, _ := doReq(t, app, jsonReq(t, "PUT", fmt.Sprintf("/api/theory/topics/%d/content", topicID),
		map[string]interface{}{"content": "mkswap, swapon, /etc/fstab entries"}, adminToken))
	if status != fiber.StatusOK {
		t.Fatalf("set content: status %d", status)
	}
	status, _ = doReq(t, app, jsonReq(t, "POST", fmt.Sprintf("/api/theory/topics/%d/resources", topicID),
		map[string]interface{}{"title": "man swapon", "url": "https://man7.org/linux/man-pages/man8/swapon.8.html"}, adminToken))
	if status != fiber.StatusCreated {
		t.Fatalf("add resource: status %d", status)
	}

	status, _ = doReq(t, app, jsonReq(t, "DELETE", fmt.Sprintf("/api/theory/topics/%d", topicID), nil, adminToken))
	if status != fiber.StatusOK {
		t.Fatalf("delete leaf: status %d", status)
	}

	for _, table := range []string{"theory_contents", "theory_resources"} {
		var count int
		if err := dbQueryRowScan(fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE topic_id = $1`, table),
			[]interface{}{topicID}, &count); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Fatalf("expected no %s rows after topic delete, found %d", table, count)
		}
	}
}

func TestContentUpsert(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := seedUser(t, "admin@example.com", true)

	topicID := createTopic(t, app, adminToken, "Cron", nil)

	for _, text := range []string{"first draft", "second draft"} {
		status, body := doReq(t, app, jsonReq(t, "PUT", fmt.Sprintf("/api/theory/topics/%d/content", topicID),
			map[string]interface{}{"content": text}, adminToken))
		if status != fiber.StatusOK {
			t.Fatalf("upsert %q: status %d body %v", text, status, body)
		}
	}

	var count int
	if err := dbQueryRowScan(`SELECT COUNT(*) FROM theory_contents WHERE topic_id = $1`,
		[]interface{}{topicID}, &count); err != nil {
		t.Fatalf("count contents: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single content row, got %d", count)
	}

	status, body := doReq(t, app, jsonReq(t, "GET", fmt.Sprintf("/api/theory/topics/%d", topicID), nil, ""))
	if status != fiber.StatusOK {
		t.Fatalf("get topic: status %d", status)
	}
	content := body["content"].(map[string]interface{})
	if got := content["content"].(string); got != "second draft" {
		t.Fatalf("expected latest content, got %q", got)
	}
}

func TestLinkQuestionIdempotent(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := seedUser(t, "admin@example.com", true)

	topicID := createTopic(t, app, adminToken, "Permissions", nil)
	qid := createQuestion(t, app, adminToken, "What does chmod 4755 set?",
		"hard", "Permissions", []string{"setuid", "sticky bit"}, []int{0})

	target := fmt.Sprintf("/api/theory/topics/%d/questions/%d", topicID, qid)
	for i := 0; i < 2; i++ {
		status, body := doReq(t, app, jsonReq(t, "POST", target, nil, adminToken))
		if status != fiber.StatusOK {
			t.Fatalf("link attempt %d: status %d body %v", i+1, status, body)
		}
	}

	var count int
	if err := dbQueryRowScan(`SELECT COUNT(*) FROM topic_questions WHERE topic_id = $1 AND question_id = $2`,
		[]interface{}{topicID, qid}, &count); err != nil {
		t.Fatalf("count links: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single link row, got %d", count)
	}

	// Unlink twice; the second call is a no-op, not an error.
	for i := 0; i < 2; i++ {
		status, _ := doReq(t, app, jsonReq(t, "DELETE", target, nil, adminToken))
		if status != fiber.StatusOK {
			t.Fatalf("unlink attempt %d: status %d", i+1, status)
		}
	}
}

func TestTopicDetailBreadcrumbs(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := seedUser(t, "admin@example.com", true)

	a := createTopic(t, app, adminToken, "Storage", nil)
	b := createTopic(t, app, adminToken, "LVM", &a)
	c := createTopic(t, app, adminToken, "Snapshots", &b)

	status, body := doReq(t, app, jsonReq(t, "GET", fmt.Sprintf("/api/theory/topics/%d", c), nil, ""))
	if status != fiber.StatusOK {
		t.Fatalf("get topic: status %d body %v", status, body)
	}
	crumbs := body["breadcrumbs"].([]interface{})
	if len(crumbs) != 3 {
		t.Fatalf("expected 3 breadcrumbs, got %d", len(crumbs))
	}
	want := []string{"Storage", "LVM", "Snapshots"}
	for i, crumb := range crumbs {
		title := crumb.(map[string]interface{})["title"].(string)
		if title != want[i] {
			t.Fatalf("breadcrumb %d: expected %q, got %q", i, want[i], title)
		}
	}

	status, body = doReq(t, app, jsonReq(t, "GET", fmt.Sprintf("/api/theory/topics/%d", b), nil, ""))
	if status != fiber.StatusOK {
		t.Fatalf("get topic: status %d", status)
	}
	children := body["children"].([]interface{})
	if len(children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(children))
	}
}

func TestDeleteResourceReportsTopic(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := seedUser(t, "admin@example.com", true)

	topicID := createTopic(t, app, adminToken, "Boot process", nil)
	status, body := doReq(t, app, jsonReq(t, "POST", fmt.Sprintf("/api/theory/topics/%d/resources", topicID),
		map[string]interface{}{"title": "GRUB manual", "url": "https://www.gnu.org/software/grub/manual/"}, adminToken))
	if status != fiber.StatusCreated {
		t.Fatalf("add resource: status %d body %v", status, body)
	}
	resourceID := int(body["resource"].(map[string]interface{})["id"].(float64))

	status, body = doReq(t, app, jsonReq(t, "DELETE", fmt.Sprintf("/api/theory/resources/%d", resourceID), nil, adminToken))
	if status != fiber.StatusOK {
		t.Fatalf("delete resource: status %d body %v", status, body)
	}
	if got := int(body["topic_id"].(float64)); got != topicID {
		t.Fatalf("expected topic_id %d in response, got %d", topicID, got)
	}
}
