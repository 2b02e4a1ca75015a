package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/student-risk-meter/internal/errors"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/risk"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/security"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/types"
)

type handlers struct {
	app *app
}

// validationError turns a rejected field into a 400 response
func validationError(err error) error {
	var vErr *security.ValidationError
	if errors.As(err, &vErr) {
		return apperrors.NewValidationError("Invalid "+vErr.Field, vErr.Reason)
	}
	return err
}

func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		apperrors.Respond(c, apperrors.NewValidationError("Invalid request body", err.Error()))
		return false
	}
	return true
}

// health godoc
// @Summary Service health
// @Tags system
// @Produce json
// @Success 200 {object} types.HealthResponse
// @Failure 503 {object} types.HealthResponse
// @Router /health [get]
func (h *handlers) health(c *gin.Context) {
	services, healthy := h.app.health(c.Request.Context())

	resp := types.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version,
		Services:  services,
	}
	status := http.StatusOK
	if !healthy {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

func (h *handlers) stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.stats())
}

// getStudent godoc
// @Summary Fetch a student into the session
// @Tags students
// @Produce json
// @Param id path string true "8-digit student id"
// @Success 200 {object} dashboard.View
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/student/{id} [get]
func (h *handlers) getStudent(c *gin.Context) {
	id := c.Param("id")
	if err := h.app.security.ValidateStudentID(id); err != nil {
		apperrors.Respond(c, validationError(err))
		return
	}

	view, err := h.app.dashboard.FetchStudent(c.Request.Context(), security.ProfileID(c), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// generateStudent godoc
// @Summary Generate a synthetic student
// @Tags students
// @Produce json
// @Success 200 {object} dashboard.View
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/generate-student [get]
func (h *handlers) generateStudent(c *gin.Context) {
	view, err := h.app.dashboard.GenerateStudent(c.Request.Context(), security.ProfileID(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// assess godoc
// @Summary Assess the selected risk factors
// @Tags assessment
// @Accept json
// @Produce json
// @Param request body types.AssessRequest true "Assessment request"
// @Success 200 {object} dashboard.View
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/assess [post]
func (h *handlers) assess(c *gin.Context) {
	var req types.AssessRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.StudentID != "" {
		if err := h.app.security.ValidateStudentID(req.StudentID); err != nil {
			apperrors.Respond(c, validationError(err))
			return
		}
	}
	factors, err := h.app.security.ValidateFactors(req.Factors)
	if err != nil {
		apperrors.Respond(c, validationError(err))
		return
	}

	view, err := h.app.dashboard.Assess(c.Request.Context(), security.ProfileID(c), req.StudentID, factors)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// classify godoc
// @Summary Classify a metric set
// @Tags assessment
// @Accept json
// @Produce json
// @Param request body types.ClassifyRequest true "Metrics"
// @Success 200 {object} risk.Classification
// @Failure 422 {object} errors.ErrorResponse
// @Router /api/classify [post]
func (h *handlers) classify(c *gin.Context) {
	var req types.ClassifyRequest
	if !bindJSON(c, &req) {
		return
	}

	var opts []risk.Option
	if req.Partial {
		opts = append(opts, risk.WithPartial())
	}
	result, err := risk.Classify(req.Metrics, opts...)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// categorize godoc
// @Summary Group factor tags into categories
// @Tags factors
// @Accept json
// @Produce json
// @Param request body types.CategorizeRequest true "Factor tags"
// @Success 200 {object} types.CategorizeResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/factors/categorize [post]
func (h *handlers) categorize(c *gin.Context) {
	var req types.CategorizeRequest
	if !bindJSON(c, &req) {
		return
	}
	factors, err := h.app.security.ValidateFactors(req.Factors)
	if err != nil {
		apperrors.Respond(c, validationError(err))
		return
	}
	c.JSON(http.StatusOK, types.CategorizeResponse{Categories: risk.CategorizeFactors(factors)})
}

// catalog godoc
// @Summary Known factor tags with display labels
// @Tags factors
// @Produce json
// @Success 200 {array} risk.FactorOption
// @Router /api/factors/catalog [get]
func (h *handlers) catalog(c *gin.Context) {
	c.JSON(http.StatusOK, risk.FactorCatalog())
}

// listHistory godoc
// @Summary List the profile's assessments
// @Tags history
// @Produce json
// @Success 200 {object} types.HistoryResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/history [get]
func (h *handlers) listHistory(c *gin.Context) {
	profile := security.ProfileID(c)
	all, err := h.app.dashboard.History(c.Request.Context(), profile)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if all == nil {
		all = []risk.Assessment{}
	}
	c.JSON(http.StatusOK, types.HistoryResponse{Profile: profile, Assessments: all, Count: len(all)})
}

// recordHistory godoc
// @Summary Record a client-measured assessment
// @Tags history
// @Accept json
// @Produce json
// @Param request body types.RecordRequest true "Assessment"
// @Success 201 {object} dashboard.AssessmentView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /api/history [post]
func (h *handlers) recordHistory(c *gin.Context) {
	var req types.RecordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.app.security.ValidateStudentID(req.StudentID); err != nil {
		apperrors.Respond(c, validationError(err))
		return
	}
	factors, err := h.app.security.ValidateFactors(req.Factors)
	if err != nil {
		apperrors.Respond(c, validationError(err))
		return
	}

	var opts []risk.Option
	if req.Partial {
		opts = append(opts, risk.WithPartial())
	}
	view, err := h.app.dashboard.RecordAssessment(c.Request.Context(), security.ProfileID(c), req.StudentID, req.Metrics, factors, opts...)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// clearHistory godoc
// @Summary Clear the profile's history
// @Tags history
// @Produce json
// @Success 200 {object} types.MessageResponse
// @Router /api/history [delete]
func (h *handlers) clearHistory(c *gin.Context) {
	if err := h.app.dashboard.ClearHistory(c.Request.Context(), security.ProfileID(c)); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, types.MessageResponse{Message: "history cleared"})
}

// latestHistory godoc
// @Summary Latest assessment
// @Tags history
// @Produce json
// @Success 200 {object} risk.Assessment
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/history/latest [get]
func (h *handlers) latestHistory(c *gin.Context) {
	profile := security.ProfileID(c)
	latest, ok, err := h.app.dashboard.LatestAssessment(c.Request.Context(), profile)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if !ok {
		apperrors.Respond(c, apperrors.NewNotFoundError("Assessment", "latest", nil))
		return
	}
	c.JSON(http.StatusOK, latest)
}

// statistics godoc
// @Summary Dashboard statistics
// @Tags history
// @Produce json
// @Success 200 {object} dashboard.Statistics
// @Router /api/statistics [get]
func (h *handlers) statistics(c *gin.Context) {
	stats, err := h.app.dashboard.Statistics(c.Request.Context(), security.ProfileID(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// populationDistribution godoc
// @Summary Population distribution of the profile's history
// @Tags history
// @Produce json
// @Success 200 {object} risk.Distribution
// @Router /api/distribution [get]
func (h *handlers) populationDistribution(c *gin.Context) {
	all, err := h.app.dashboard.History(c.Request.Context(), security.ProfileID(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, risk.DistributionForHistory(all))
}

// assessmentDistribution godoc
// @Summary Per-assessment distribution of a metric set
// @Tags assessment
// @Accept json
// @Produce json
// @Param request body types.DistributionRequest true "Metrics"
// @Success 200 {object} risk.Distribution
// @Failure 422 {object} errors.ErrorResponse
// @Router /api/distribution/assessment [post]
func (h *handlers) assessmentDistribution(c *gin.Context) {
	var req types.DistributionRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := risk.Classify(req.Metrics, risk.WithPartial())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, risk.DistributionForHealth(result.Health))
}

// reset godoc
// @Summary Reset the session and the history
// @Tags assessment
// @Produce json
// @Success 200 {object} dashboard.View
// @Router /api/reset [post]
func (h *handlers) reset(c *gin.Context) {
	view, err := h.app.dashboard.Reset(c.Request.Context(), security.ProfileID(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
