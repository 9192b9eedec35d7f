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

// QuestionInput is the write payload for questions: answer option texts plus
// the set of indices into that list marked correct.
type QuestionInput struct {
	Text           string   `json:"text" validate:"required"`
	Difficulty     string   `json:"difficulty" validate:"oneof=easy medium hard"`
	Category       string   `json:"category" validate:"required"`
	ExamType       string   `json:"exam_type"`
	Answers        []string `json:"answers" validate:"required,min=2"`
	CorrectAnswers []int    `json:"correct_answers" validate:"required,min=1"`
}

func (in *QuestionInput) normalize() {
	in.Text = strings.TrimSpace(in.Text)
	in.Category = strings.TrimSpace(in.Category)
	in.ExamType = strings.ToLower(strings.TrimSpace(in.ExamType))
	if in.ExamType == "" {
		in.ExamType = "rhcsa"
	}
}

func (in *QuestionInput) validateIndexes() error {
	for _, idx := range in.CorrectAnswers {
		if idx < 0 || idx >= len(in.Answers) {
			return fmt.Errorf("correct answer index %d out of range", idx)
		}
	}
	return nil
}

// getOrCreateCategory resolves a category name to its id inside the current
// transaction, creating the row when the name is new.
func getOrCreateCategory(tx *sql.Tx, name, examType string) (int, error) {
	var id int
	err := tx.QueryRow("SELECT id FROM question_categories WHERE name = $1", name).Scan(&id)
	if err == sql.ErrNoRows {
		err = tx.QueryRow(`INSERT INTO question_categories (name, exam_type, description)
			VALUES ($1, $2, $3) RETURNING id`,
			name, examType, "Question category: "+name).Scan(&id)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func insertAnswers(tx *sql.Tx, questionID int, texts []string, correct []int) error {
	correctSet := map[int]bool{}
	for _, idx := range correct {
		correctSet[idx] = true
	}
	for i, text := range texts {
		_, err := tx.Exec(`INSERT INTO answers (text, is_correct, question_id) VALUES ($1, $2, $3)`,
			text, correctSet[i], questionID)
		if err != nil {
			return err
		}
	}
	return nil
}

// CreateQuestion stores a question together with its answer options. A
// category name never seen before is created on the fly.
func CreateQuestion(c *fiber.Ctx) error {
	validate := validator.New()
	db := util.DB

	var input QuestionInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to parse request body",
			"error":   err.Error(),
		})
	}
	input.normalize()
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	if err := input.validateIndexes(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	}

	tx, err := db.Begin()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to start transaction"})
	}
	defer tx.Rollback()

	categoryID, err := getOrCreateCategory(tx, input.Category, input.ExamType)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to resolve category", "error": err.Error()})
	}

	var questionID int
	err = tx.QueryRow(`INSERT INTO questions (text, difficulty, category, category_id, exam_type)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		input.Text, input.Difficulty, input.Category, categoryID, input.ExamType).Scan(&questionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to insert question", "error": err.Error()})
	}

	if err := insertAnswers(tx, questionID, input.Answers, input.CorrectAnswers); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to insert answers", "error": err.Error()})
	}

	if err := tx.Commit(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to commit transaction", "error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":      "success",
		"message":     "Question created successfully",
		"question_id": questionID,
	})
}

// loadAnswers fetches the answer rows for a set of questions, keyed by
// question id. is_correct is included; callers serving test takers must
// strip it.
func loadAnswers(db *sql.DB, questionIDs []int) (map[int][]models.Answer, error) {
	byQuestion := map[int][]models.Answer{}
	if len(questionIDs) == 0 {
		return byQuestion, nil
	}

	placeholders := make([]string, len(questionIDs))
	args := make([]interface{}, len(questionIDs))
	for i, id := range questionIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `SELECT id, text, is_correct, question_id FROM answers
		WHERE question_id IN (` + strings.Join(placeholders, ", ") + `) ORDER BY id`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.ID, &a.Text, &a.IsCorrect, &a.QuestionID); err != nil {
			return nil, err
		}
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}
	return byQuestion, rows.Err()
}

// GetQuestions lists questions with optional category, difficulty and exam
// type filters plus skip/limit pagination.
func GetQuestions(c *fiber.Ctx) error {
	db := util.DB

	skip, _ := strconv.Atoi(c.Query("skip", "0"))
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	category := c.Query("category")
	difficulty := c.Query("difficulty")
	examType := c.Query("exam_type")

	query := `SELECT id, text, difficulty, category, category_id, exam_type FROM questions`
	var conditions []string
	var args []interface{}
	argID := 1

	if category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argID))
		args = append(args, category)
		argID++
	}
	if difficulty != "" {
		conditions = append(conditions, fmt.Sprintf("difficulty = $%d", argID))
		args = append(args, difficulty)
		argID++
	}
	if examType != "" {
		conditions = append(conditions, fmt.Sprintf("exam_type = $%d", argID))
		args = append(args, examType)
		argID++
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, limit, skip)

	rows, err := db.Query(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve questions", "error": err.Error()})
	}
	defer rows.Close()

	questions := []models.Question{}
	var ids []int
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Difficulty, &q.Category, &q.CategoryID, &q.ExamType); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to parse results", "error": err.Error()})
		}
		questions = append(questions, q)
		ids = append(ids, q.ID)
	}

	answersByQuestion, err := loadAnswers(db, ids)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve answers", "error": err.Error()})
	}
	for i := range questions {
		questions[i].Answers = answersByQuestion[questions[i].ID]
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "success",
		"questions": questions,
		"skip":      skip,
		"limit":     limit,
	})
}

func GetQuestionByID(c *fiber.Ctx) error {
	db := util.DB

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid question ID"})
	}

	var q models.Question
	err = db.QueryRow(`SELECT id, text, difficulty, category, category_id, exam_type
		FROM questions WHERE id = $1`, id).
		Scan(&q.ID, &q.Text, &q.Difficulty, &q.Category, &q.CategoryID, &q.ExamType)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Question not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch question", "error": err.Error()})
	}

	answersByQuestion, err := loadAnswers(db, []int{q.ID})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to retrieve answers", "error": err.Error()})
	}
	q.Answers = answersByQuestion[q.ID]

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":   "success",
		"question": q,
	})
}

// EditQuestion replaces the question's scalar fields and its whole answer
// set. User answers hanging off the old answers are removed first, then the
// old answers, then the new set is inserted. Full replace, not a diff.
func EditQuestion(c *fiber.Ctx) error {
	validate := validator.New()
	db := util.DB

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid question ID"})
	}

	var exists int
	err = db.QueryRow("SELECT 1 FROM questions WHERE id = $1", id).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Question not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
	}

	var input QuestionInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body", "error": err.Error()})
	}
	input.normalize()
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Validation failed", "error": err.Error()})
	}
	if err := input.validateIndexes(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}

	tx, err := db.Begin()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to start transaction"})
	}
	defer tx.Rollback()

	categoryID, err := getOrCreateCategory(tx, input.Category, input.ExamType)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to resolve category", "error": err.Error()})
	}

	_, err = tx.Exec(`UPDATE questions SET text = $1, difficulty = $2, category = $3,
		category_id = $4, exam_type = $5 WHERE id = $6`,
		input.Text, input.Difficulty, input.Category, categoryID, input.ExamType, id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to update question", "error": err.Error()})
	}

	_, err = tx.Exec(`DELETE FROM user_answers WHERE question_id = $1`, id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to clear old user answers", "error": err.Error()})
	}
	_, err = tx.Exec(`DELETE FROM answers WHERE question_id = $1`, id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to clear old answers", "error": err.Error()})
	}

	if err := insertAnswers(tx, id, input.Answers, input.CorrectAnswers); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to insert answers", "error": err.Error()})
	}

	if err := tx.Commit(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to commit transaction", "error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Question updated successfully",
	})
}

// deleteQuestionCascade removes one question plus its dependent user answers
// and answers inside the given transaction. Returns answers and user-answer
// counts removed.
func deleteQuestionCascade(tx *sql.Tx, questionID int) (int64, int64, error) {
	uaRes, err := tx.Exec(`DELETE FROM user_answers WHERE question_id = $1`, questionID)
	if err != nil {
		return 0, 0, err
	}
	aRes, err := tx.Exec(`DELETE FROM answers WHERE question_id = $1`, questionID)
	if err != nil {
		return 0, 0, err
	}
	if _, err := tx.Exec(`DELETE FROM topic_questions WHERE question_id = $1`, questionID); err != nil {
		return 0, 0, err
	}
	if _, err := tx.Exec(`DELETE FROM questions WHERE id = $1`, questionID); err != nil {
		return 0, 0, err
	}
	uaCount, _ := uaRes.RowsAffected()
	aCount, _ := aRes.RowsAffected()
	return aCount, uaCount, nil
}

func DeleteQuestion(c *fiber.Ctx) error {
	db := util.DB

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid question ID"})
	}

	var exists int
	err = db.QueryRow("SELECT 1 FROM questions WHERE id = $1", id).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Question not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
	}

	tx, err := db.Begin()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to start transaction"})
	}
	defer tx.Rollback()

	if _, _, err := deleteQuestionCascade(tx, id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to delete question", "error": err.Error()})
	}

	if err := tx.Commit(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to commit transaction", "error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Question deleted successfully",
	})
}

// GetTestOptions returns the distinct categories and difficulties present in
// the question pool; the client renders these as the test-picker form.
func GetTestOptions(c *fiber.Ctx) error {
	db := util.DB

	categories := []string{}
	rows, err := db.Query(`SELECT DISTINCT category FROM questions ORDER BY category`)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch categories", "error": err.Error()})
	}
	defer rows.Close()
	for rows.Next() {
		var cat string
		if err := rows.Scan(&cat); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to scan category", "error": err.Error()})
		}
		categories = append(categories, cat)
	}

	difficulties := []string{}
	diffRows, err := db.Query(`SELECT DISTINCT difficulty FROM questions ORDER BY difficulty`)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch difficulties", "error": err.Error()})
	}
	defer diffRows.Close()
	for diffRows.Next() {
		var diff string
		if err := diffRows.Scan(&diff); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to scan difficulty", "error": err.Error()})
		}
		difficulties = append(difficulties, diff)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":       "success",
		"categories":   categories,
		"difficulties": difficulties,
	})
}
