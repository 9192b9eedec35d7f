package routers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cliflow/cliflow_backend/controllers"
	"github.com/cliflow/cliflow_backend/middlewares"
	"github.com/cliflow/cliflow_backend/util"
)

func SetupRoutes(app *fiber.App, cfg util.Config) {

	api := app.Group("/api")
	protected := middlewares.Protected(cfg)
	admin := middlewares.AdminOnly()

	questions := api.Group("/questions")
	questions.Post("/", protected, admin, controllers.CreateQuestion)
	questions.Get("/", controllers.GetQuestions)
	questions.Get("/test-options", controllers.GetTestOptions)
	questions.Get("/:id", controllers.GetQuestionByID)
	questions.Put("/:id", protected, admin, controllers.EditQuestion)
	questions.Delete("/:id", protected, admin, controllers.DeleteQuestion)

	categories := api.Group("/categories")
	categories.Post("/", protected, admin, controllers.CreateCategory)
	categories.Get("/", controllers.GetCategories)
	categories.Put("/:id", protected, admin, controllers.UpdateCategory)
	categories.Delete("/:id", protected, admin, controllers.DeleteCategory)

	tests := api.Group("/tests")
	tests.Post("/start", protected, controllers.StartTest)
	tests.Post("/submit/:attempt_id", protected, controllers.SubmitTest)
	tests.Get("/history", protected, controllers.GetTestHistory)
	tests.Get("/:attempt_id", protected, controllers.GetTestAttempt)

	theory := api.Group("/theory")
	theory.Post("/topics", protected, admin, controllers.CreateTopic)
	theory.Get("/topics", controllers.GetTopics)
	theory.Get("/topics/:id", controllers.GetTopic)
	theory.Put("/topics/:id", protected, admin, controllers.UpdateTopic)
	theory.Delete("/topics/:id", protected, admin, controllers.DeleteTopic)
	theory.Put("/topics/:id/content", protected, admin, controllers.UpsertContent)
	theory.Post("/topics/:id/resources", protected, admin, controllers.AddResource)
	theory.Delete("/resources/:id", protected, admin, controllers.DeleteResource)
	theory.Post("/topics/:id/questions/:question_id", protected, admin, controllers.LinkQuestion)
	theory.Delete("/topics/:id/questions/:question_id", protected, admin, controllers.UnlinkQuestion)

	adminGroup := api.Group("/admin", protected, admin)
	adminGroup.Get("/stats", controllers.GetAdminStats)
	adminGroup.Get("/users", controllers.GetUsers)
	adminGroup.Put("/users/:id", controllers.UpdateUser)
	adminGroup.Post("/questions/batch-delete", controllers.BatchDeleteQuestions)
	adminGroup.Delete("/categories/:category/questions", controllers.DeleteCategoryQuestions)

	app.Use(middlewares.NotFound)
}
