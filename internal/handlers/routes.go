package handlers

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the API under /api.
func RegisterRoutes(app *fiber.App, projects *ProjectHandler, storage *StorageHandler) fiber.Router {
	api := app.Group("/api")

	api.Get("/health", storage.Health)
	api.Get("/storage/status", storage.GetStatus)
	api.Post("/admin/sync", storage.SyncLocal)

	// search before :id
	api.Get("/projects", projects.ListProjects)
	api.Get("/projects/search", projects.SearchProjects)
	api.Post("/projects", projects.CreateProject)
	api.Post("/projects/ideas", projects.SubmitIdea)
	api.Get("/projects/:id", projects.GetProject)
	api.Put("/projects/:id", projects.UpdateProject)
	api.Delete("/projects/:id", projects.DeleteProject)
	api.Patch("/projects/:id/status", projects.UpdateStatus)
	api.Post("/projects/:id/view", projects.RecordView)
	api.Post("/projects/:id/like", projects.RecordLike)
	api.Post("/projects/:id/analyze", projects.AnalyzeProject)
	api.Post("/projects/:id/export", projects.ExportPlan)

	return api
}
