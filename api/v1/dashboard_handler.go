package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	api_middleware "github.com/thesrcielos/PadelTracker/api/middleware"
	"github.com/thesrcielos/PadelTracker/internal/match"
	"github.com/thesrcielos/PadelTracker/internal/notify"
	"github.com/thesrcielos/PadelTracker/internal/profile"
	"github.com/thesrcielos/PadelTracker/internal/skill"
	"github.com/thesrcielos/PadelTracker/pkg/logger"
)

const MsgNothingToUpdate = "Nothing to update"

// DashboardHandler serves the read models of the authenticated user. Each
// request gets its own aggregator scoped to that user.
type DashboardHandler struct {
	profiles profile.Repository
	matches  match.Repository
	skills   skill.Repository
	log      *logger.Logger
}

func NewDashboardHandler(profiles profile.Repository, matches match.Repository, skills skill.Repository, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{profiles: profiles, matches: matches, skills: skills, log: log}
}

func (h *DashboardHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfileHandler)
	g.PATCH("/profile", h.UpdateProfileHandler)
	g.GET("/matches", h.GetMatchesHandler)
	g.POST("/matches", h.AddMatchHandler)
	g.GET("/performance", h.GetPerformanceHandler)
	g.GET("/skills", h.GetSkillsHandler)
	g.PUT("/skills", h.UpdateSkillsHandler)
	g.GET("/skills/catalog", h.GetCatalogHandler)
	g.GET("/assessments", h.GetAssessmentsHandler)
	g.POST("/assessments", h.RecordAssessmentHandler)
}

func (h *DashboardHandler) GetProfileHandler(c echo.Context) error {
	p, err := h.profiles.Get(c.Request().Context(), api_middleware.UserID(c))
	if err != nil {
		return toHTTPError(err, false)
	}
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, ErrorResponse{Message: "Profile not found"})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *DashboardHandler) UpdateProfileHandler(c echo.Context) error {
	var updates profile.Updates
	if err := c.Bind(&updates); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	if updates.Empty() {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Message: MsgNothingToUpdate})
	}
	if r := updates.Validate(); !r.Valid {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Message: r.Message})
	}
	p, err := h.profiles.Update(c.Request().Context(), api_middleware.UserID(c), updates)
	if err != nil {
		return toHTTPError(err, false)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *DashboardHandler) GetMatchesHandler(c echo.Context) error {
	a := match.NewAggregator(h.matches, match.StaticUser(api_middleware.UserID(c)), notify.Discard, h.log)
	if err := a.Load(c.Request().Context()); err != nil {
		return toHTTPError(err, false)
	}
	return c.JSON(http.StatusOK, a.View())
}

func (h *DashboardHandler) AddMatchHandler(c echo.Context) error {
	var nm match.NewMatch
	if err := c.Bind(&nm); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	a := match.NewAggregator(h.matches, match.StaticUser(api_middleware.UserID(c)), notify.Discard, h.log)
	m, err := a.AddMatch(c.Request().Context(), nm)
	if err != nil {
		return toHTTPError(err, false)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *DashboardHandler) GetPerformanceHandler(c echo.Context) error {
	p := match.NewPerformanceAggregator(h.matches, match.StaticUser(api_middleware.UserID(c)), h.log)
	if err := p.Load(c.Request().Context()); err != nil {
		return toHTTPError(err, false)
	}
	return c.JSON(http.StatusOK, p.View())
}

func (h *DashboardHandler) GetSkillsHandler(c echo.Context) error {
	a := skill.NewAggregator(h.skills, match.StaticUser(api_middleware.UserID(c)), notify.Discard, h.log)
	if err := a.Load(c.Request().Context()); err != nil {
		return toHTTPError(err, false)
	}
	return c.JSON(http.StatusOK, a.View())
}

type updateSkillsRequest struct {
	Skills []skill.Rating `json:"skills"`
}

func (h *DashboardHandler) UpdateSkillsHandler(c echo.Context) error {
	var req updateSkillsRequest
	if err := c.Bind(&req); err != nil || len(req.Skills) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	a := skill.NewAggregator(h.skills, match.StaticUser(api_middleware.UserID(c)), notify.Discard, h.log)
	if err := a.UpdateSkills(c.Request().Context(), req.Skills); err != nil {
		return toHTTPError(err, false)
	}
	return c.JSON(http.StatusOK, a.View())
}

func (h *DashboardHandler) GetCatalogHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"groups":   skill.Catalog(),
		"skills":   skill.AllSkills(),
		"levels":   skill.PlayerLevels(),
		"defaults": skill.DefaultRatings(),
	})
}

func (h *DashboardHandler) GetAssessmentsHandler(c echo.Context) error {
	a := skill.NewAggregator(h.skills, match.StaticUser(api_middleware.UserID(c)), notify.Discard, h.log)
	history, err := a.Assessments(c.Request().Context())
	if err != nil {
		return toHTTPError(err, false)
	}
	return c.JSON(http.StatusOK, history)
}

type recordAssessmentRequest struct {
	Notes  string         `json:"notes"`
	Skills []skill.Rating `json:"skills"`
}

func (h *DashboardHandler) RecordAssessmentHandler(c echo.Context) error {
	var req recordAssessmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, INVALID_REQUEST)
	}
	a := skill.NewAggregator(h.skills, match.StaticUser(api_middleware.UserID(c)), notify.Discard, h.log)
	assessment, err := a.RecordAssessment(c.Request().Context(), req.Notes, req.Skills)
	if err != nil {
		return toHTTPError(err, false)
	}
	return c.JSON(http.StatusCreated, assessment)
}
