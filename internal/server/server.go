package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"planboard/internal/auth"
	"planboard/internal/models"
	"planboard/internal/services"
)

// Server is the thin HTTP boundary over the plan and submission services.
type Server struct {
	plans       *services.PlanService
	submissions *services.SubmissionService
	gate        *auth.Gate
}

func New(plans *services.PlanService, submissions *services.SubmissionService, gate *auth.Gate) *Server {
	return &Server{plans: plans, submissions: submissions, gate: gate}
}

func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	user := requireRole(s.gate, models.RoleUser)
	admin := requireRole(s.gate, models.RoleAdmin)

	plan := e.Group("/plan")

	plan.GET("/await/list", s.awaitSubmitPlans, user)
	plan.GET("/submit/list", s.listOwnSubmissions, user)
	plan.POST("/submit/file", s.submitFile, user)
	plan.GET("/file", s.downloadPlanFile, user)
	plan.GET("/submit/file", s.downloadOwnSubmission, user)

	plan.POST("/add", s.addPlan, admin)
	plan.POST("/update", s.updatePlan, admin)
	plan.GET("/list", s.listPlans, admin)
	plan.POST("/delete", s.deletePlans, admin)
	plan.POST("/lock", s.lockPlans, admin)
	plan.POST("/unlock", s.unlockPlans, admin)
	plan.GET("/update/history", s.updateHistory, admin)
	plan.GET("/complete", s.completeStatus, admin)

	plan.GET("/submit/history", s.listAllSubmissions, admin)
	plan.POST("/submit/audit", s.auditSubmissions, admin)
	plan.POST("/submit/delete", s.deleteSubmissions, admin)
	plan.POST("/submit/rename-file", s.renameSubmission, admin)
	plan.GET("/submit/user-file", s.downloadAnySubmission, admin)
	plan.POST("/submit/files", s.bulkZip, admin)
	plan.GET("/submit/all-file", s.zipAllForPlan, admin)

	return e
}
