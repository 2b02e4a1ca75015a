package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/student-risk-meter/internal/errors"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/security"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/students"
)

type submitAssessmentRequest struct {
	Factors []string `json:"factors"`
}

// registerStudentDataRoutes mounts the student-data service under /data so
// another instance can use this one as its remote collaborator
func registerStudentDataRoutes(rg *gin.RouterGroup, svc *students.Service, sec *security.SecurityMiddleware) {
	rg.GET("/students/:id", func(c *gin.Context) {
		id := c.Param("id")
		if err := sec.ValidateStudentID(id); err != nil {
			apperrors.Respond(c, validationError(err))
			return
		}

		rec, err := svc.FetchStudent(c.Request.Context(), id)
		if err != nil {
			apperrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	})

	rg.POST("/students", func(c *gin.Context) {
		gen, err := svc.GenerateStudent(c.Request.Context())
		if err != nil {
			apperrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, gen)
	})

	rg.POST("/students/:id/assessments", func(c *gin.Context) {
		id := c.Param("id")
		if err := sec.ValidateStudentID(id); err != nil {
			apperrors.Respond(c, validationError(err))
			return
		}

		var req submitAssessmentRequest
		if !bindJSON(c, &req) {
			return
		}
		factors, err := sec.ValidateFactors(req.Factors)
		if err != nil {
			apperrors.Respond(c, validationError(err))
			return
		}

		eval, err := svc.SubmitAssessment(c.Request.Context(), id, factors)
		if err != nil {
			apperrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, eval)
	})
}
