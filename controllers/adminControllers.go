package controllers

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/cliflow/cliflow_backend/models"
	"github.com/cliflow/cliflow_backend/util"
)

// GetAdminStats reports platform-wide counts for the admin dashboard.
func GetAdminStats(c *fiber.Ctx) error {
	db := util.DB

	stats := fiber.Map{}
	for key, query := range map[string]string{
		"total_users":        `SELECT COUNT(*) FROM users`,
		"total_questions":    `SELECT COUNT(*) FROM questions`,
		"total_categories":   `SELECT COUNT(*) FROM question_categories`,
		"total_topics":       `SELECT COUNT(*) FROM theory_topics`,
		"total_attempts":     `SELECT COUNT(*) FROM test_attempts`,
		"completed_attempts": `SELECT COUNT(*) FROM test_attempts WHERE end_time IS NOT NULL`,
	} {
		var count int
		if err := db.QueryRow(query).Scan(&count); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to compute stats", "error": err.Error()})
		}
		stats[key] = count
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"stats":  stats,
	})
}

// GetUsers lists registered users for the admin console.
func GetUsers(c *fiber.Ctx) error {
	db := util.DB

	rows, err := db.Query(`SELECT id, email, hashed_password, is_active, is_superuser, created_at
		FROM users ORDER BY id`)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch users", "error": err.Error()})
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Password, &u.IsActive, &u.IsSuperuser, &u.CreatedAt); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to scan user", "error": err.Error()})
		}
		users = append(users, u)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"users":  users,
	})
}

// UpdateUser toggles a user's active or superuser flags.
func UpdateUser(c *fiber.Ctx) error {
	type userUpdateInput struct {
		IsActive    *bool `json:"is_active"`
		IsSuperuser *bool `json:"is_superuser"`
	}

	db := util.DB

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid user ID"})
	}

	var user models.User
	err = db.QueryRow(`SELECT id, email, hashed_password, is_active, is_superuser, created_at
		FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Email, &user.Password, &user.IsActive, &user.IsSuperuser, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "User not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
	}

	var input userUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid input", "error": err.Error()})
	}

	var sets []string
	var args []interface{}
	argID := 1
	if input.IsActive != nil {
		sets = append(sets, fmt.Sprintf("is_active = $%d", argID))
		args = append(args, *input.IsActive)
		user.IsActive = *input.IsActive
		argID++
	}
	if input.IsSuperuser != nil {
		sets = append(sets, fmt.Sprintf("is_superuser = $%d", argID))
		args = append(args, *input.IsSuperuser)
		user.IsSuperuser = *input.IsSuperuser
		argID++
	}

	if len(sets) > 0 {
		query := "UPDATE users SET " + strings.Join(sets, ", ") + fmt.Sprintf(" WHERE id = $%d", argID)
		args = append(args, id)
		if _, err := db.Exec(query, args...); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to update user", "error": err.Error()})
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"user":   user,
	})
}

// BatchDeleteQuestions removes a set of questions with their answers and the
// answer history referencing them, reporting what was deleted. Unknown IDs
// are skipped.
func BatchDeleteQuestions(c *fiber.Ctx) error {
	type batchInput struct {
		QuestionIDs []int `json:"question_ids" validate:"required,min=1"`
	}

	validate := validator.New()
	db := util.DB

	var input batchInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid input", "error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Validation failed", "error": err.Error()})
	}

	tx, err := db.Begin()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to start transaction"})
	}
	defer tx.Rollback()

	var questionsDeleted, answersDeleted, userAnswersDeleted int64
	for _, qid := range input.QuestionIDs {
		var exists int
		err := tx.QueryRow(`SELECT 1 FROM questions WHERE id = $1`, qid).Scan(&exists)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
		}
		answers, userAnswers, err := deleteQuestionCascade(tx, qid)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to delete question", "error": err.Error()})
		}
		questionsDeleted++
		answersDeleted += answers
		userAnswersDeleted += userAnswers
	}

	if err := tx.Commit(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to commit transaction", "error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":               "success",
		"questions_deleted":    questionsDeleted,
		"answers_deleted":      answersDeleted,
		"user_answers_deleted": userAnswersDeleted,
	})
}

// DeleteCategoryQuestions removes every question carrying a category name,
// optionally narrowed to one exam type.
func DeleteCategoryQuestions(c *fiber.Ctx) error {
	db := util.DB

	category := c.Params("category")
	if category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Category name is required"})
	}

	query := `SELECT id FROM questions WHERE category = $1`
	args := []interface{}{category}
	if examType := c.Query("exam_type"); examType != "" {
		query += " AND exam_type = $2"
		args = append(args, examType)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch questions", "error": err.Error()})
	}
	var questionIDs []int
	for rows.Next() {
		var qid int
		if err := rows.Scan(&qid); err != nil {
			rows.Close()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to scan question", "error": err.Error()})
		}
		questionIDs = append(questionIDs, qid)
	}
	rows.Close()

	tx, err := db.Begin()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to start transaction"})
	}
	defer tx.Rollback()

	var answersDeleted, userAnswersDeleted int64
	for _, qid := range questionIDs {
		answers, userAnswers, err := deleteQuestionCascade(tx, qid)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to delete question", "error": err.Error()})
		}
		answersDeleted += answers
		userAnswersDeleted += userAnswers
	}

	if err := tx.Commit(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to commit transaction", "error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":               "success",
		"category":             category,
		"questions_deleted":    len(questionIDs),
		"answers_deleted":      answersDeleted,
		"user_answers_deleted": userAnswersDeleted,
	})
}
