package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"planboard/internal/models"
	"planboard/internal/services"
)

func (s *Server) submitFile(c echo.Context) error {
	planID, err := strconv.Atoi(c.FormValue("planId"))
	if err != nil {
		return badRequest(c, "planId must be an integer")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	up, closeFile, err := openUpload(fh)
	if err != nil {
		return respondError(c, err)
	}
	defer closeFile()

	if err := s.submissions.Submit(c.Request().Context(), callerID(c), planID, *up); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) downloadPlanFile(c echo.Context) error {
	planID, err := strconv.Atoi(c.QueryParam("id"))
	if err != nil {
		return badRequest(c, "id must be an integer")
	}
	file, err := s.submissions.DownloadPlanFile(c.Request().Context(), planID)
	if err != nil {
		return respondError(c, err)
	}
	return streamFile(c, file)
}

func (s *Server) downloadOwnSubmission(c echo.Context) error {
	id, err := strconv.Atoi(c.QueryParam("id"))
	if err != nil {
		return badRequest(c, "id must be an integer")
	}
	file, err := s.submissions.DownloadOwn(c.Request().Context(), callerID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return streamFile(c, file)
}

func (s *Server) downloadAnySubmission(c echo.Context) error {
	id, err := strconv.Atoi(c.QueryParam("id"))
	if err != nil {
		return badRequest(c, "id must be an integer")
	}
	file, err := s.submissions.DownloadAny(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return streamFile(c, file)
}

func (s *Server) listOwnSubmissions(c echo.Context) error {
	status := models.SubmitStatus(c.QueryParam("status"))
	page, err := s.submissions.ListForUser(c.Request().Context(), callerID(c), pageQuery(c), status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (s *Server) listAllSubmissions(c echo.Context) error {
	q := services.AdminListQuery{
		SubmitField: c.QueryParam("option"),
		SubmitValue: c.QueryParam("optionValue"),
		ExtraField:  c.QueryParam("extraOption"),
		ExtraValue:  c.QueryParam("extraValue"),
		PlanField:   c.QueryParam("planOption"),
		PlanValue:   c.QueryParam("planValue"),
	}
	q.Offset, _ = strconv.Atoi(c.QueryParam("start"))
	if q.Count, _ = strconv.Atoi(c.QueryParam("count")); q.Count <= 0 {
		q.Count = 10
	}
	page, err := s.submissions.ListAll(c.Request().Context(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

type auditRequest struct {
	IDs    []int               `json:"ids"`
	Status models.SubmitStatus `json:"status"`
}

func (s *Server) auditSubmissions(c echo.Context) error {
	var req auditRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	if err := s.submissions.Audit(c.Request().Context(), callerID(c), req.IDs, req.Status); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) deleteSubmissions(c echo.Context) error {
	var req idsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	if err := s.submissions.Delete(c.Request().Context(), req.IDs); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

type renameRequest struct {
	ID      int    `json:"id"`
	NewName string `json:"newName"`
}

func (s *Server) renameSubmission(c echo.Context) error {
	var req renameRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	if req.NewName == "" {
		return badRequest(c, "newName is required")
	}
	if err := s.submissions.Rename(c.Request().Context(), req.ID, req.NewName); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) bulkZip(c echo.Context) error {
	var req idsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	file, err := s.submissions.BulkZip(c.Request().Context(), callerID(c), req.IDs)
	if err != nil {
		return respondError(c, err)
	}
	return streamFile(c, file)
}

func (s *Server) zipAllForPlan(c echo.Context) error {
	planID, err := strconv.Atoi(c.QueryParam("id"))
	if err != nil {
		return badRequest(c, "id must be an integer")
	}
	file, err := s.submissions.ZipAllForPlan(c.Request().Context(), callerID(c), planID,
		c.QueryParam("option"), c.QueryParam("optionValue"))
	if err != nil {
		return respondError(c, err)
	}
	return streamFile(c, file)
}
