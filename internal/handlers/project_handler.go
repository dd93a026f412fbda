package handlers

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"planner-service/internal/models"
	"planner-service/internal/services"
)

// ProjectHandler serves the project endpoints of the mini app.
type ProjectHandler struct {
	projects *services.ProjectService
	analysis *services.AnalysisService
	exports  *services.ExportService
	logger   *slog.Logger
}

func NewProjectHandler(projects *services.ProjectService, analysis *services.AnalysisService, exports *services.ExportService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		analysis: analysis,
		exports:  exports,
		logger:   logger,
	}
}

// ProjectRequest carries the fields a user may author. Omitted fields are
// left unchanged on update.
type ProjectRequest struct {
	UserID            *string       `json:"user_id"`
	Title             *string       `json:"title"`
	Description       *string       `json:"description"`
	BusinessIdea      *string       `json:"business_idea"`
	Industry          *string       `json:"industry"`
	TargetAudience    *string       `json:"target_audience"`
	Budget            *string       `json:"budget"`
	Monetization      *string       `json:"monetization"`
	Stage             *models.Stage `json:"stage"`
	Tags              []string      `json:"tags"`
	InvestmentEnabled *bool         `json:"investment_enabled"`
	FundingGoalTON    *float64      `json:"funding_goal_ton"`
	TokenSymbol       *string       `json:"token_symbol"`
	TokenPriceTON     *float64      `json:"token_price_ton"`
	DemoURL           *string       `json:"demo_url"`
	WebsiteURL        *string       `json:"website_url"`
}

func (r *ProjectRequest) validate() error {
	if r.Stage != nil && !r.Stage.Valid() {
		return errors.Errorf("unknown stage %q", *r.Stage)
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return errors.New("title must not be empty")
	}
	return nil
}

func (r *ProjectRequest) apply(p *models.Project) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&p.UserID, r.UserID)
	set(&p.Title, r.Title)
	set(&p.Description, r.Description)
	set(&p.BusinessIdea, r.BusinessIdea)
	set(&p.Industry, r.Industry)
	set(&p.TargetAudience, r.TargetAudience)
	set(&p.Budget, r.Budget)
	set(&p.Monetization, r.Monetization)
	set(&p.TokenSymbol, r.TokenSymbol)
	set(&p.DemoURL, r.DemoURL)
	set(&p.WebsiteURL, r.WebsiteURL)
	if r.Stage != nil {
		p.Stage = *r.Stage
	}
	if r.Tags != nil {
		p.Tags = r.Tags
	}
	if r.InvestmentEnabled != nil {
		p.InvestmentEnabled = *r.InvestmentEnabled
	}
	if r.FundingGoalTON != nil {
		p.FundingGoalTON = r.FundingGoalTON
	}
	if r.TokenPriceTON != nil {
		p.TokenPriceTON = r.TokenPriceTON
	}
}

type IdeaRequest struct {
	Idea   string `json:"idea"`
	UserID string `json:"user_id"`
}

type StatusRequest struct {
	Status models.Status `json:"status"`
}

// ListProjects returns all projects
// @Summary List projects
// @Description List all projects, newest first
// @Tags projects
// @Produce json
// @Success 200 {array} models.Project "List of projects"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /projects [get]
func (h *ProjectHandler) ListProjects(c *fiber.Ctx) error {
	projects, err := h.projects.ListProjects(c.UserContext())
	if err != nil {
		h.logger.Error("list projects failed", "error", err)
		return errorResponse(c, statusFor(err), "Failed to list projects", err)
	}
	return c.JSON(projects)
}

// SearchProjects finds projects by text
// @Summary Search projects
// @Description Case-insensitive substring search over title and description, falling back to similar projects
// @Tags projects
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {array} models.Project "Matching projects"
// @Failure 400 {object} map[string]interface{} "Missing query"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /projects/search [get]
func (h *ProjectHandler) SearchProjects(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Query parameter q is required", nil)
	}
	projects, err := h.projects.SearchProjects(c.UserContext(), q)
	if err != nil {
		h.logger.Error("search projects failed", "query", q, "error", err)
		return errorResponse(c, statusFor(err), "Failed to search projects", err)
	}
	return c.JSON(projects)
}

// GetProject returns a project by ID
// @Summary Get a project by ID
// @Tags projects
// @Produce json
// @Param id path integer true "Project ID"
// @Success 200 {object} models.Project "Project found"
// @Failure 400 {object} map[string]interface{} "Invalid ID"
// @Failure 404 {object} map[string]interface{} "Project not found"
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetProject(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid project ID", err)
	}
	project, err := h.projects.GetProject(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, statusFor(err), "Project not found", err)
	}
	return c.JSON(project)
}

// CreateProject creates a new project
// @Summary Create a project
// @Description Create a draft project. A missing title is derived from the business idea.
// @Tags projects
// @Accept json
// @Produce json
// @Param project body ProjectRequest true "Project data"
// @Success 201 {object} models.Project "Project created"
// @Failure 400 {object} map[string]interface{} "Invalid project data"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /projects [post]
func (h *ProjectHandler) CreateProject(c *fiber.Ctx) error {
	var req ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request format", err)
	}
	if err := req.validate(); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid project data", err)
	}
	var draft models.Project
	req.apply(&draft)

	project, err := h.projects.CreateProject(c.UserContext(), draft)
	if err != nil {
		h.logger.Error("create project failed", "error", err)
		return errorResponse(c, statusFor(err), "Failed to create project", err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// SubmitIdea creates and analyses a project from a free-text idea
// @Summary Submit a business idea
// @Description Create a draft from the idea text and run the full analysis
// @Tags projects
// @Accept json
// @Produce json
// @Param request body IdeaRequest true "Idea"
// @Success 201 {object} models.Project "Analysed project"
// @Failure 400 {object} map[string]interface{} "Empty idea"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /projects/ideas [post]
func (h *ProjectHandler) SubmitIdea(c *fiber.Ctx) error {
	var req IdeaRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request format", err)
	}
	project, err := h.analysis.SubmitIdea(c.UserContext(), req.Idea, req.UserID)
	if err != nil {
		if !errors.Is(err, services.ErrEmptyIdea) {
			h.logger.Error("submit idea failed", "error", err)
		}
		return errorResponse(c, statusFor(err), "Failed to submit idea", err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// UpdateProject updates the authored fields of a project
// @Summary Update a project
// @Tags projects
// @Accept json
// @Produce json
// @Param id path integer true "Project ID"
// @Param project body ProjectRequest true "Fields to change"
// @Success 200 {object} models.Project "Updated project"
// @Failure 400 {object} map[string]interface{} "Invalid ID or data"
// @Failure 404 {object} map[string]interface{} "Project not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /projects/{id} [put]
func (h *ProjectHandler) UpdateProject(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid project ID", err)
	}
	var req ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request format", err)
	}
	if err := req.validate(); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid project data", err)
	}

	existing, err := h.projects.GetProject(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, statusFor(err), "Project not found", err)
	}
	req.apply(existing)

	updated, err := h.projects.UpdateProject(c.UserContext(), existing)
	if err != nil {
		h.logger.Error("update project failed", "project_id", id, "error", err)
		return errorResponse(c, statusFor(err), "Failed to update project", err)
	}
	return c.JSON(updated)
}

// UpdateStatus moves a project along its lifecycle
// @Summary Change project status
// @Description Allowed: active to funded, completed or cancelled; funded to completed or cancelled
// @Tags projects
// @Accept json
// @Produce json
// @Param id path integer true "Project ID"
// @Param request body StatusRequest true "New status"
// @Success 200 {object} models.Project "Updated project"
// @Failure 400 {object} map[string]interface{} "Invalid ID or body"
// @Failure 404 {object} map[string]interface{} "Project not found"
// @Failure 409 {object} map[string]interface{} "Transition not allowed"
// @Router /projects/{id}/status [patch]
func (h *ProjectHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid project ID", err)
	}
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request format", err)
	}
	project, err := h.projects.TransitionStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return errorResponse(c, statusFor(err), "Failed to change status", err)
	}
	return c.JSON(project)
}

// RecordView counts a view
// @Summary Record a project view
// @Tags projects
// @Produce json
// @Param id path integer true "Project ID"
// @Success 200 {object} models.Project "Updated project"
// @Failure 404 {object} map[string]interface{} "Project not found"
// @Router /projects/{id}/view [post]
func (h *ProjectHandler) RecordView(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid project ID", err)
	}
	project, err := h.projects.RecordView(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, statusFor(err), "Failed to record view", err)
	}
	return c.JSON(project)
}

// RecordLike counts a like
// @Summary Like a project
// @Tags projects
// @Produce json
// @Param id path integer true "Project ID"
// @Success 200 {object} models.Project "Updated project"
// @Failure 404 {object} map[string]interface{} "Project not found"
// @Router /projects/{id}/like [post]
func (h *ProjectHandler) RecordLike(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid project ID", err)
	}
	project, err := h.projects.RecordLike(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, statusFor(err), "Failed to record like", err)
	}
	return c.JSON(project)
}

// DeleteProject deletes a project
// @Summary Delete a project
// @Description Delete a project and its embeddings. Deleting an unknown project succeeds.
// @Tags projects
// @Produce json
// @Param id path integer true "Project ID"
// @Success 200 {object} map[string]interface{} "Project deleted"
// @Failure 400 {object} map[string]interface{} "Invalid ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid project ID", err)
	}
	if err := h.projects.DeleteProject(c.UserContext(), id); err != nil {
		h.logger.Error("delete project failed", "project_id", id, "error", err)
		return errorResponse(c, statusFor(err), "Failed to delete project", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Project deleted",
		"id":      id,
	})
}

// AnalyzeProject runs the full analysis of a project
// @Summary Analyse a project
// @Description Generate every analysis facet concurrently and store them in one update
// @Tags analysis
// @Produce json
// @Param id path integer true "Project ID"
// @Success 200 {object} models.Project "Analysed project"
// @Failure 404 {object} map[string]interface{} "Project not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /projects/{id}/analyze [post]
func (h *ProjectHandler) AnalyzeProject(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid project ID", err)
	}
	project, err := h.analysis.AnalyzeProject(c.UserContext(), id)
	if err != nil {
		if !errors.Is(err, services.ErrProjectNotFound) {
			h.logger.Error("analysis failed", "project_id", id, "error", err)
		}
		return errorResponse(c, statusFor(err), "Failed to analyse project", err)
	}
	return c.JSON(project)
}

// ExportPlan exports an analysed project
// @Summary Export a business plan
// @Description Zip the plan and pitch deck, upload them and return a download link
// @Tags analysis
// @Produce json
// @Param id path integer true "Project ID"
// @Success 200 {object} services.ExportResult "Export created"
// @Failure 404 {object} map[string]interface{} "Project not found"
// @Failure 409 {object} map[string]interface{} "Project not analysed"
// @Failure 503 {object} map[string]interface{} "Export not configured"
// @Router /projects/{id}/export [post]
func (h *ProjectHandler) ExportPlan(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid project ID", err)
	}
	res, err := h.exports.ExportPlan(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, statusFor(err), "Failed to export plan", err)
	}
	return c.JSON(res)
}
