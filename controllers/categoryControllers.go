package controllers

import (
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/cliflow/cliflow_backend/models"
	"github.com/cliflow/cliflow_backend/util"
)

// CreateCategory registers a named category. Names are unique across
// exam types; a duplicate name is a conflict.
func CreateCategory(c *fiber.Ctx) error {
	type categoryInput struct {
		Name        string `json:"name" validate:"required"`
		ExamType    string `json:"exam_type"`
		Description string `json:"description"`
	}

	validate := validator.New()
	db := util.DB

	var input categoryInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid input", "error": err.Error()})
	}
	if input.ExamType == "" {
		input.ExamType = "rhcsa"
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Validation failed", "error": err.Error()})
	}

	var existingID int
	err := db.QueryRow(`SELECT id FROM question_categories WHERE name = $1`, input.Name).Scan(&existingID)
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"status": "error", "message": "A category with this name already exists"})
	}
	if err != sql.ErrNoRows {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
	}

	var categoryID int
	err = db.QueryRow(`INSERT INTO question_categories (name, exam_type, description)
		VALUES ($1, $2, $3) RETURNING id`,
		input.Name, input.ExamType, input.Description).Scan(&categoryID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to create category", "error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"category": models.QuestionCategory{
			ID:          categoryID,
			Name:        input.Name,
			ExamType:    input.ExamType,
			Description: input.Description,
		},
	})
}

// GetCategories lists categories, optionally filtered by exam type, each
// with a count of the questions attached to it.
func GetCategories(c *fiber.Ctx) error {
	db := util.DB

	query := `SELECT c.id, c.name, c.exam_type, c.description, c.created_at,
		(SELECT COUNT(*) FROM questions q WHERE q.category_id = c.id) AS question_count
		FROM question_categories c`
	var args []interface{}
	if examType := c.Query("exam_type"); examType != "" {
		query += " WHERE c.exam_type = $1"
		args = append(args, examType)
	}
	query += " ORDER BY c.name"

	rows, err := db.Query(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch categories", "error": err.Error()})
	}
	defer rows.Close()

	type categoryWithCount struct {
		models.QuestionCategory
		QuestionCount int `json:"question_count"`
	}

	categories := []categoryWithCount{}
	for rows.Next() {
		var cat categoryWithCount
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.ExamType, &cat.Description, &cat.CreatedAt, &cat.QuestionCount); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to scan category", "error": err.Error()})
		}
		categories = append(categories, cat)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":     "success",
		"categories": categories,
	})
}

// UpdateCategory renames a category or edits its description. A rename is
// propagated to the denormalized category name on every attached question.
func UpdateCategory(c *fiber.Ctx) error {
	type categoryUpdateInput struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	db := util.DB

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid category ID"})
	}

	var current models.QuestionCategory
	err = db.QueryRow(`SELECT id, name, exam_type, description, created_at
		FROM question_categories WHERE id = $1`, id).
		Scan(&current.ID, &current.Name, &current.ExamType, &current.Description, &current.CreatedAt)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Category not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
	}

	var input categoryUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid input", "error": err.Error()})
	}

	tx, err := db.Begin()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to start transaction"})
	}
	defer tx.Rollback()

	if input.Name != nil && *input.Name != current.Name {
		var existingID int
		err := tx.QueryRow(`SELECT id FROM question_categories WHERE name = $1 AND id != $2`,
			*input.Name, id).Scan(&existingID)
		if err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"status": "error", "message": "A category with this name already exists"})
		}
		if err != sql.ErrNoRows {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
		}
		if _, err := tx.Exec(`UPDATE question_categories SET name = $1 WHERE id = $2`, *input.Name, id); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to rename category", "error": err.Error()})
		}
		if _, err := tx.Exec(`UPDATE questions SET category = $1 WHERE category_id = $2`, *input.Name, id); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to propagate rename", "error": err.Error()})
		}
		current.Name = *input.Name
	}

	if input.Description != nil {
		if _, err := tx.Exec(`UPDATE question_categories SET description = $1 WHERE id = $2`, *input.Description, id); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to update category", "error": err.Error()})
		}
		current.Description = *input.Description
	}

	if err := tx.Commit(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to commit transaction", "error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":   "success",
		"category": current,
	})
}

// DeleteCategory removes a category row and detaches its questions. The
// questions keep their last category name as plain text.
func DeleteCategory(c *fiber.Ctx) error {
	db := util.DB

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid category ID"})
	}

	var exists int
	err = db.QueryRow(`SELECT 1 FROM question_categories WHERE id = $1`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Category not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error", "error": err.Error()})
	}

	tx, err := db.Begin()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to start transaction"})
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE questions SET category_id = NULL WHERE category_id = $1`, id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to detach questions", "error": err.Error()})
	}
	detached, _ := res.RowsAffected()

	if _, err := tx.Exec(`DELETE FROM question_categories WHERE id = $1`, id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to delete category", "error": err.Error()})
	}

	if err := tx.Commit(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to commit transaction", "error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":             "success",
		"message":            "Category deleted successfully",
		"detached_questions": detached,
	})
}
