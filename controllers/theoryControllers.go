package controllers

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/cliflow/cliflow_backend/models"
	"github.com/cliflow/cliflow_backend/util"
)

func scanTopic(row *sql.Row) (models.TheoryTopic, error) {
	var t models.TheoryTopic
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.ParentID, &t.ExamType, &t.Order)
	return t, err
}

const topicColumns = "id, title, description, parent_id, exam_type, display_order"

// wouldCreateCycle walks the ancestor chain of candidate parent newParentID
// and reports whether topicID appears in it. The walk terminates because
// every committed tree is acyclic; this check is what keeps it that way.
func wouldCreateCycle(db *sql.DB, topicID, newParentID int) (bool, error) {
	current := &newParentID
	for current != nil {
		if *current == topicID {
			return true, nil
		}
		var parent *int
		err := db.QueryRow(`SELECT parent_id FROM theory_topics WHERE id = $1`, *current).Scan(&parent)
		if err == sql.ErrNoRows {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		current = parent
	}
	return false, nil
}

// CreateTopic adds a theory topic, optionally under an existing parent. A
// fresh node cannot be its own ancestor, so no cycle check is needed here.
func CreateTopic(c *fiber.Ctx) error {
	type topicInput struct {
		Title       string  `json:"title" validate:"required"`
		Description *string `json:"description"`
		ParentID    *int    `json:"parent_id"`
		ExamType    string  `json:"exam_type"`
		Order       int     `json:"order"`
	}

	validate := validator.New()
	db := util.DB

	var input topicInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid input", "error": err.Error()})
	}
	if input.ExamType == "" {
		input.ExamType = "rhcsa"
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Validation failed", "error": err.Error()})
	}

	if input.ParentID != nil {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM theory_topics WHERE id = $1`, *input.ParentID).Scan(&exists)
		if err == sql.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Parent topic not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
		}
	}

	var topicID int
	err := db.QueryRow(`INSERT INTO theory_topics (title, description, parent_id, exam_type, display_order)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		input.Title, input.Description, input.ParentID, input.ExamType, input.Order).Scan(&topicID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create topic", "error": err.Error()})
	}

	topic, err := scanTopic(db.QueryRow(`SELECT `+topicColumns+` FROM theory_topics WHERE id = $1`, topicID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch created topic", "error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"topic":  topic,
	})
}

// GetTopics lists topics, filtered by exam type and parent. Without a
// parent_id parameter only root topics are returned.
func GetTopics(c *fiber.Ctx) error {
	db := util.DB

	skip, _ := strconv.Atoi(c.Query("skip", "0"))
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	examType := c.Query("exam_type")
	parentParam := c.Query("parent_id")

	query := `SELECT ` + topicColumns + ` FROM theory_topics`
	var conditions []string
	var args []interface{}
	argID := 1

	if examType != "" {
		conditions = append(conditions, fmt.Sprintf("exam_type = $%d", argID))
		args = append(args, examType)
		argID++
	}
	if parentParam != "" {
		parentID, err := strconv.Atoi(parentParam)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid parent_id"})
		}
		conditions = append(conditions, fmt.Sprintf("parent_id = $%d", argID))
		args = append(args, parentID)
		argID++
	} else {
		conditions = append(conditions, "parent_id IS NULL")
	}
	query += " WHERE " + strings.Join(conditions, " AND ")
	query += fmt.Sprintf(" ORDER BY display_order, id LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, limit, skip)

	rows, err := db.Query(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch topics", "error": err.Error()})
	}
	defer rows.Close()

	topics := []models.TheoryTopic{}
	for rows.Next() {
		var t models.TheoryTopic
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.ParentID, &t.ExamType, &t.Order); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to scan topic", "error": err.Error()})
		}
		topics = append(topics, t)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"topics": topics,
	})
}

// GetTopic returns a topic with its content block, resources, direct
// children, linked questions and the breadcrumb path from the root.
func GetTopic(c *fiber.Ctx) error {
	db := util.DB

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid topic ID"})
	}

	topic, err := scanTopic(db.QueryRow(`SELECT `+topicColumns+` FROM theory_topics WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Topic not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch topic", "error": err.Error()})
	}

	var content *models.TheoryContent
	var tc models.TheoryContent
	err = db.QueryRow(`SELECT id, topic_id, content, created_at, updated_at
		FROM theory_contents WHERE topic_id = $1`, id).
		Scan(&tc.ID, &tc.TopicID, &tc.Content, &tc.CreatedAt, &tc.UpdatedAt)
	if err == nil {
		content = &tc
	} else if err != sql.ErrNoRows {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch content", "error": err.Error()})
	}

	resources := []models.TheoryResource{}
	resRows, err := db.Query(`SELECT id, topic_id, title, url, resource_type
		FROM theory_resources WHERE topic_id = $1 ORDER BY id`, id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch resources", "error": err.Error()})
	}
	defer resRows.Close()
	for resRows.Next() {
		var r models.TheoryResource
		if err := resRows.Scan(&r.ID, &r.TopicID, &r.Title, &r.URL, &r.ResourceType); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to scan resource", "error": err.Error()})
		}
		resources = append(resources, r)
	}

	children := []models.TheoryTopic{}
	childRows, err := db.Query(`SELECT `+topicColumns+` FROM theory_topics
		WHERE parent_id = $1 ORDER BY display_order, id`, id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch children", "error": err.Error()})
	}
	defer childRows.Close()
	for childRows.Next() {
		var t models.TheoryTopic
		if err := childRows.Scan(&t.ID, &t.Title, &t.Description, &t.ParentID, &t.ExamType, &t.Order); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to scan child topic", "error": err.Error()})
		}
		children = append(children, t)
	}

	questions := []models.Question{}
	qRows, err := db.Query(`SELECT q.id, q.text, q.difficulty, q.category, q.category_id, q.exam_type
		FROM questions q
		JOIN topic_questions tq ON tq.question_id = q.id
		WHERE tq.topic_id = $1 ORDER BY q.id`, id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch linked questions", "error": err.Error()})
	}
	defer qRows.Close()
	for qRows.Next() {
		var q models.Question
		if err := qRows.Scan(&q.ID, &q.Text, &q.Difficulty, &q.Category, &q.CategoryID, &q.ExamType); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to scan linked question", "error": err.Error()})
		}
		questions = append(questions, q)
	}

	// Breadcrumb path, root first. Terminates because the tree is acyclic.
	breadcrumbs := []models.TheoryTopic{topic}
	current := topic
	for current.ParentID != nil {
		parent, err := scanTopic(db.QueryRow(`SELECT `+topicColumns+` FROM theory_topics WHERE id = $1`, *current.ParentID))
		if err != nil {
			if err == sql.ErrNoRows {
				break
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to walk breadcrumbs", "error": err.Error()})
		}
		breadcrumbs = append([]models.TheoryTopic{parent}, breadcrumbs...)
		current = parent
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":      "success",
		"topic":       topic,
		"content":     content,
		"resources":   resources,
		"children":    children,
		"questions":   questions,
		"breadcrumbs": breadcrumbs,
	})
}

// UpdateTopic applies a partial update. Re-parenting is validated: the topic
// cannot become its own parent, the new parent must exist, and the move must
// not create a cycle. A parent_id of 0 detaches the topic to the root.
func UpdateTopic(c *fiber.Ctx) error {
	type topicUpdateInput struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		ParentID    *int    `json:"parent_id"`
		ExamType    *string `json:"exam_type"`
		Order       *int    `json:"order"`
	}

	db := util.DB

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid topic ID"})
	}

	topic, err := scanTopic(db.QueryRow(`SELECT `+topicColumns+` FROM theory_topics WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Topic not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch topic", "error": err.Error()})
	}

	var input topicUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid input", "error": err.Error()})
	}

	var setParent bool
	var newParent *int
	if input.ParentID != nil {
		requested := *input.ParentID
		if requested == id {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "A topic cannot be its own parent"})
		}
		if requested == 0 {
			// Sentinel: detach to root.
			setParent = true
			newParent = nil
		} else {
			var exists int
			err := db.QueryRow(`SELECT 1 FROM theory_topics WHERE id = $1`, requested).Scan(&exists)
			if err == sql.ErrNoRows {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Parent topic not found"})
			}
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
			}
			cyclic, err := wouldCreateCycle(db, id, requested)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to validate hierarchy", "error": err.Error()})
			}
			if cyclic {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Re-parenting would create a cycle in the topic hierarchy"})
			}
			setParent = true
			newParent = &requested
		}
	}

	var sets []string
	var args []interface{}
	argID := 1
	if input.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", argID))
		args = append(args, *input.Title)
		argID++
	}
	if input.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argID))
		args = append(args, *input.Description)
		argID++
	}
	if setParent {
		sets = append(sets, fmt.Sprintf("parent_id = $%d", argID))
		args = append(args, newParent)
		argID++
	}
	if input.ExamType != nil {
		sets = append(sets, fmt.Sprintf("exam_type = $%d", argID))
		args = append(args, *input.ExamType)
		argID++
	}
	if input.Order != nil {
		sets = append(sets, fmt.Sprintf("display_order = $%d", argID))
		args = append(args, *input.Order)
		argID++
	}

	if len(sets) > 0 {
		query := "UPDATE theory_topics SET " + strings.Join(sets, ", ") + fmt.Sprintf(" WHERE id = $%d", argID)
		args = append(args, id)
		if _, err := db.Exec(query, args...); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to update topic", "error": err.Error()})
		}
	}

	topic, err = scanTopic(db.QueryRow(`SELECT `+topicColumns+` FROM theory_topics WHERE id = $1`, id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch updated topic", "error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"topic":  topic,
	})
}

// DeleteTopic removes a childless topic together with its content block and
// resources. Topics that still have children are protected.
func DeleteTopic(c *fiber.Ctx) error {
	db := util.DB

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid topic ID"})
	}

	var exists int
	err = db.QueryRow(`SELECT 1 FROM theory_topics WHERE id = $1`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Topic not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
	}

	var childCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM theory_topics WHERE parent_id = $1`, id).Scan(&childCount); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
	}
	if childCount > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": fmt.Sprintf("Cannot delete a topic with child topics. Remove or re-parent %d child topics first.", childCount),
		})
	}

	tx, err := db.Begin()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to start transaction"})
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM theory_contents WHERE topic_id = $1`,
		`DELETE FROM theory_resources WHERE topic_id = $1`,
		`DELETE FROM topic_questions WHERE topic_id = $1`,
		`DELETE FROM theory_topics WHERE id = $1`,
	} {
		if _, err := tx.Exec(stmt, id); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to delete topic", "error": err.Error()})
		}
	}

	if err := tx.Commit(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to commit transaction", "error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Topic deleted successfully",
	})
}

// UpsertContent sets a topic's content block, overwriting any existing one.
// At most one content row exists per topic.
func UpsertContent(c *fiber.Ctx) error {
	type contentInput struct {
		Content string `json:"content" validate:"required"`
	}

	validate := validator.New()
	db := util.DB

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid topic ID"})
	}

	var exists int
	err = db.QueryRow(`SELECT 1 FROM theory_topics WHERE id = $1`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Topic not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
	}

	var input contentInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid input", "error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Validation failed", "error": err.Error()})
	}

	var contentID int
	err = db.QueryRow(`SELECT id FROM theory_contents WHERE topic_id = $1`, id).Scan(&contentID)
	switch {
	case err == sql.ErrNoRows:
		_, err = db.Exec(`INSERT INTO theory_contents (topic_id, content) VALUES ($1, $2)`, id, input.Content)
	case err == nil:
		_, err = db.Exec(`UPDATE theory_contents SET content = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
			input.Content, contentID)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to save content", "error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Content saved successfully",
	})
}

// AddResource attaches an external resource link to a topic.
func AddResource(c *fiber.Ctx) error {
	type resourceInput struct {
		Title        string `json:"title" validate:"required"`
		URL          string `json:"url" validate:"required,url"`
		ResourceType string `json:"resource_type"`
	}

	validate := validator.New()
	db := util.DB

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid topic ID"})
	}

	var exists int
	err = db.QueryRow(`SELECT 1 FROM theory_topics WHERE id = $1`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Topic not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
	}

	var input resourceInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid input", "error": err.Error()})
	}
	if input.ResourceType == "" {
		input.ResourceType = "link"
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Validation failed", "error": err.Error()})
	}

	var resourceID int
	err = db.QueryRow(`INSERT INTO theory_resources (topic_id, title, url, resource_type)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		id, input.Title, input.URL, input.ResourceType).Scan(&resourceID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create resource", "error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"resource": models.TheoryResource{
			ID:           resourceID,
			TopicID:      id,
			Title:        input.Title,
			URL:          input.URL,
			ResourceType: input.ResourceType,
		},
	})
}

// DeleteResource removes a resource and reports the topic that owned it, so
// the caller can refresh the right view.
func DeleteResource(c *fiber.Ctx) error {
	db := util.DB

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid resource ID"})
	}

	var topicID int
	err = db.QueryRow(`SELECT topic_id FROM theory_resources WHERE id = $1`, id).Scan(&topicID)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Resource not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
	}

	if _, err := db.Exec(`DELETE FROM theory_resources WHERE id = $1`, id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to delete resource", "error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":   "success",
		"message":  "Resource deleted successfully",
		"topic_id": topicID,
	})
}

// topicAndQuestionExist verifies both rows and writes the error response
// itself when one is missing. False means a response has been sent.
func topicAndQuestionExist(db *sql.DB, c *fiber.Ctx, topicID, questionID int) (bool, error) {
	var exists int
	err := db.QueryRow(`SELECT 1 FROM theory_topics WHERE id = $1`, topicID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Topic not found"})
	}
	if err != nil {
		return false, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
	}
	err = db.QueryRow(`SELECT 1 FROM questions WHERE id = $1`, questionID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Question not found"})
	}
	if err != nil {
		return false, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
	}
	return true, nil
}

// LinkQuestion associates a question with a topic. Linking an already
// linked question is a success no-op.
func LinkQuestion(c *fiber.Ctx) error {
	db := util.DB

	topicID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid topic ID"})
	}
	questionID, err := c.ParamsInt("question_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid question ID"})
	}

	if ok, res := topicAndQuestionExist(db, c, topicID, questionID); !ok {
		return res
	}

	var exists int
	err = db.QueryRow(`SELECT 1 FROM topic_questions WHERE topic_id = $1 AND question_id = $2`,
		topicID, questionID).Scan(&exists)
	if err == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "success",
			"message": "Question is already linked to this topic",
		})
	}
	if err != sql.ErrNoRows {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
	}

	_, err = db.Exec(`INSERT INTO topic_questions (topic_id, question_id) VALUES ($1, $2)`, topicID, questionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to link question", "error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Question linked to topic successfully",
	})
}

// UnlinkQuestion removes a topic-question association. Unlinking a question
// that was never linked is a success no-op.
func UnlinkQuestion(c *fiber.Ctx) error {
	db := util.DB

	topicID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid topic ID"})
	}
	questionID, err := c.ParamsInt("question_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid question ID"})
	}

	if ok, resp := topicAndQuestionExist(db, c, topicID, questionID); !ok {
		return resp
	}

	res, err := db.Exec(`DELETE FROM topic_questions WHERE topic_id = $1 AND question_id = $2`,
		topicID, questionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to unlink question", "error": err.Error()})
	}

	affected, _ := res.RowsAffected()
	message := "Question unlinked from topic successfully"
	if affected == 0 {
		message = "Question was not linked to this topic"
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": message,
	})
}
