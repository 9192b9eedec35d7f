package controllers

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cliflow/cliflow_backend/models"
	"github.com/cliflow/cliflow_backend/util"
)

// testQuestion is the shape served to a test taker: answer options with ids
// and texts, never the correctness flags.
type testQuestion struct {
	ID         int          `json:"id"`
	Text       string       `json:"text"`
	Difficulty string       `json:"difficulty"`
	Category   string       `json:"category"`
	Answers    []testAnswer `json:"answers"`
}

type testAnswer struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// StartTest creates a test attempt for the calling user over the questions
// matching the selected categories and difficulties. Empty selections mean
// no filter. One attempt row is created per call; abandoned attempts stay
// open (end_time null) and are excluded from completed history.
func StartTest(c *fiber.Ctx) error {
	type startTestInput struct {
		Categories   []string `json:"categories"`
		Difficulties []string `json:"difficulties"`
		ExamType     string   `json:"exam_type"`
	}

	db := util.DB
	user := c.Locals("user").(models.User)

	var input startTestInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid input", "error": err.Error()})
	}

	query := `SELECT id, text, difficulty, category FROM questions`
	var conditions []string
	var args []interface{}
	argID := 1

	if len(input.Categories) > 0 {
		placeholders := make([]string, len(input.Categories))
		for i, cat := range input.Categories {
			placeholders[i] = fmt.Sprintf("$%d", argID)
			args = append(args, cat)
			argID++
		}
		conditions = append(conditions, "category IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(input.Difficulties) > 0 {
		placeholders := make([]string, len(input.Difficulties))
		for i, diff := range input.Difficulties {
			placeholders[i] = fmt.Sprintf("$%d", argID)
			args = append(args, diff)
			argID++
		}
		conditions = append(conditions, "difficulty IN ("+strings.Join(placeholders, ", ")+")")
	}
	if input.ExamType != "" {
		conditions = append(conditions, fmt.Sprintf("exam_type = $%d", argID))
		args = append(args, input.ExamType)
		argID++
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	rows, err := db.Query(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch questions", "error": err.Error()})
	}
	defer rows.Close()

	questions := []testQuestion{}
	var ids []int
	for rows.Next() {
		var q testQuestion
		if err := rows.Scan(&q.ID, &q.Text, &q.Difficulty, &q.Category); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to scan question", "error": err.Error()})
		}
		questions = append(questions, q)
		ids = append(ids, q.ID)
	}

	answersByQuestion, err := loadAnswers(db, ids)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch answers", "error": err.Error()})
	}
	for i := range questions {
		for _, a := range answersByQuestion[questions[i].ID] {
			questions[i].Answers = append(questions[i].Answers, testAnswer{ID: a.ID, Text: a.Text})
		}
	}

	attemptID := uuid.NewString()
	startTime := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO test_attempts (id, user_id, start_time, score, max_score)
		VALUES ($1, $2, $3, 0, $4)`,
		attemptID, user.ID, startTime, len(questions))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create test attempt", "error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":          "success",
		"test_attempt_id": attemptID,
		"start_time":      startTime,
		"questions":       questions,
	})
}

// SubmitTest grades the submitted (question, answer) pairs, records a user
// answer per valid pair and finalizes the attempt. Pairs referencing a
// missing question or answer are skipped rather than failing the whole
// submission. A closed attempt cannot be submitted again.
func SubmitTest(c *fiber.Ctx) error {
	type submitInput struct {
		Answers map[string]int `json:"answers"`
	}

	db := util.DB
	user := c.Locals("user").(models.User)

	attemptID := c.Params("attempt_id")
	if attemptID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Test attempt ID is required"})
	}

	var input submitInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid input", "error": err.Error()})
	}

	var ownerID int
	var endTime *time.Time
	err := db.QueryRow(`SELECT user_id, end_time FROM test_attempts WHERE id = $1`, attemptID).
		Scan(&ownerID, &endTime)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Test attempt not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch test attempt", "error": err.Error()})
	}
	if ownerID != user.ID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Test attempt not found"})
	}
	if endTime != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Test attempt is already submitted"})
	}

	// Stable grading order regardless of map iteration.
	questionIDs := make([]int, 0, len(input.Answers))
	chosen := map[int]int{}
	for qidStr, answerID := range input.Answers {
		qid, err := strconv.Atoi(qidStr)
		if err != nil {
			continue
		}
		questionIDs = append(questionIDs, qid)
		chosen[qid] = answerID
	}
	sort.Ints(questionIDs)

	tx, err := db.Begin()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to start transaction"})
	}
	defer tx.Rollback()

	result := models.TestResult{Details: []models.TestResultDetail{}}

	for _, qid := range questionIDs {
		answerID := chosen[qid]

		var questionText string
		err := tx.QueryRow(`SELECT text FROM questions WHERE id = $1`, qid).Scan(&questionText)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch question", "error": err.Error()})
		}

		var answerText string
		var isCorrect bool
		err = tx.QueryRow(`SELECT text, is_correct FROM answers WHERE id = $1`, answerID).
			Scan(&answerText, &isCorrect)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch answer", "error": err.Error()})
		}

		result.TotalQuestions++
		result.MaxScore++
		if isCorrect {
			result.CorrectAnswers++
			result.Score++
		}

		_, err = tx.Exec(`INSERT INTO user_answers (test_attempt_id, question_id, answer_id, is_correct)
			VALUES ($1, $2, $3, $4)`,
			attemptID, qid, answerID, isCorrect)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to record answer", "error": err.Error()})
		}

		// One correct answer's text for display; arbitrary when several exist.
		var correctText string
		err = tx.QueryRow(`SELECT text FROM answers WHERE question_id = $1 AND is_correct = $2 ORDER BY id LIMIT 1`,
			qid, true).Scan(&correctText)
		if err != nil && err != sql.ErrNoRows {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch correct answer", "error": err.Error()})
		}

		result.Details = append(result.Details, models.TestResultDetail{
			QuestionID:    qid,
			QuestionText:  questionText,
			UserAnswer:    answerText,
			IsCorrect:     isCorrect,
			CorrectAnswer: correctText,
		})
	}

	finishedAt := time.Now().UTC()
	_, err = tx.Exec(`UPDATE test_attempts SET score = $1, max_score = $2, end_time = $3 WHERE id = $4`,
		result.Score, result.MaxScore, finishedAt, attemptID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to finalize test attempt", "error": err.Error()})
	}

	if err := tx.Commit(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to commit transaction", "error": err.Error()})
	}

	if result.MaxScore > 0 {
		result.Percentage = float64(result.Score) / float64(result.MaxScore) * 100
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"result": result,
	})
}

// GetTestHistory returns the calling user's completed attempts, most recent
// first. Open attempts (end_time null) are left out.
func GetTestHistory(c *fiber.Ctx) error {
	db := util.DB
	user := c.Locals("user").(models.User)

	rows, err := db.Query(`SELECT id, user_id, start_time, end_time, score, max_score
		FROM test_attempts
		WHERE user_id = $1 AND end_time IS NOT NULL
		ORDER BY end_time DESC`, user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch test history", "error": err.Error()})
	}
	defer rows.Close()

	history := []models.TestAttempt{}
	for rows.Next() {
		var a models.TestAttempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.StartTime, &a.EndTime, &a.Score, &a.MaxScore); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to scan test attempt", "error": err.Error()})
		}
		history = append(history, a)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":        "success",
		"test_attempts": history,
		"count":         len(history),
	})
}

// GetTestAttempt returns a single attempt with its recorded answers,
// owner-scoped.
func GetTestAttempt(c *fiber.Ctx) error {
	db := util.DB
	user := c.Locals("user").(models.User)

	attemptID := c.Params("attempt_id")

	var a models.TestAttempt
	err := db.QueryRow(`SELECT id, user_id, start_time, end_time, score, max_score
		FROM test_attempts WHERE id = $1`, attemptID).
		Scan(&a.ID, &a.UserID, &a.StartTime, &a.EndTime, &a.Score, &a.MaxScore)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Test attempt not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch test attempt", "error": err.Error()})
	}
	if a.UserID != user.ID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Test attempt not found"})
	}

	rows, err := db.Query(`SELECT id, test_attempt_id, question_id, answer_id, is_correct
		FROM user_answers WHERE test_attempt_id = $1 ORDER BY id`, attemptID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch user answers", "error": err.Error()})
	}
	defer rows.Close()

	userAnswers := []models.UserAnswer{}
	for rows.Next() {
		var ua models.UserAnswer
		if err := rows.Scan(&ua.ID, &ua.TestAttemptID, &ua.QuestionID, &ua.AnswerID, &ua.IsCorrect); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to scan user answer", "error": err.Error()})
		}
		userAnswers = append(userAnswers, ua)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":       "success",
		"test_attempt": a,
		"user_answers": userAnswers,
	})
}
