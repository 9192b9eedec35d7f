package middlewares

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/cliflow/cliflow_backend/models"
	"github.com/cliflow/cliflow_backend/util"
)

func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":  "error",
		"message": "Not Found",
	})
}

// Protected resolves the caller's bearer token to a user row and stores it
// in the request context. The token is looked for in the access_token
// cookie, then the Authorization header, then the token query parameter.
func Protected(cfg util.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies("access_token")
		if token == "" {
			token = c.Get("Authorization")
		}
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status":  "error",
				"message": "Not authorized: no token provided",
			})
		}

		claims, err := util.ParseToken(cfg, token)
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid token: " + err.Error(),
			})
		}
		email, err := util.SubjectFromClaims(claims)
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status":  "error",
				"message": err.Error(),
			})
		}

		var user models.User
		query := `SELECT id, email, hashed_password, is_active, is_superuser, created_at
		          FROM users WHERE email = $1`
		row := util.DB.QueryRow(query, email)
		err = row.Scan(&user.ID, &user.Email, &user.Password, &user.IsActive,
			&user.IsSuperuser, &user.CreatedAt)
		if err != nil {
			if err == sql.ErrNoRows {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"status":  "error",
					"message": "User not found; the account may have been removed",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Database error",
				"error":   err.Error(),
			})
		}
		if !user.IsActive {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status":  "error",
				"message": "Account is deactivated",
			})
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// AdminOnly gates mutating back-office routes. Must run after Protected.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(models.User)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status":  "error",
				"message": "Not authorized",
			})
		}
		if !user.IsSuperuser {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status":  "error",
				"message": "Admin privileges required",
			})
		}
		return c.Next()
	}
}
