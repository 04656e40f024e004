package server

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"planboard/internal/services"
)

func pageQuery(c echo.Context) services.ListQuery {
	offset, _ := strconv.Atoi(c.QueryParam("start"))
	count, err := strconv.Atoi(c.QueryParam("count"))
	if err != nil || count <= 0 {
		count = 10
	}
	return services.ListQuery{
		Offset: offset,
		Count:  count,
		Field:  c.QueryParam("option"),
		Value:  c.QueryParam("optionValue"),
	}
}

// formUpload adapts one multipart file field into a service upload. A missing
// field returns (nil, nil).
func formUpload(c echo.Context, field string) (*services.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, func() {}, nil
	}
	return openUpload(fh)
}

func openUpload(fh *multipart.FileHeader) (*services.Upload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	up := &services.Upload{Name: fh.Filename, Size: fh.Size, Body: f}
	return up, func() { f.Close() }, nil
}

func (s *Server) addPlan(c echo.Context) error {
	deadline, err := time.Parse(time.RFC3339, c.FormValue("deadline"))
	if err != nil {
		return badRequest(c, "deadline must be RFC 3339")
	}
	file, closeFile, err := formUpload(c, "file")
	if err != nil {
		return respondError(c, err)
	}
	defer closeFile()

	plan, err := s.plans.Create(c.Request().Context(), callerID(c), services.CreatePlanInput{
		Title:    c.FormValue("title"),
		Content:  c.FormValue("content"),
		Deadline: deadline,
		File:     file,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, plan)
}

func (s *Server) updatePlan(c echo.Context) error {
	id, err := strconv.Atoi(c.FormValue("id"))
	if err != nil {
		return badRequest(c, "id must be an integer")
	}
	in := services.UpdatePlanInput{ID: id, Comment: c.FormValue("changeComment")}
	if v := c.FormValue("title"); v != "" {
		in.Title = &v
	}
	if v := c.FormValue("content"); v != "" {
		in.Content = &v
	}
	if v := c.FormValue("deadline"); v != "" {
		deadline, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "deadline must be RFC 3339")
		}
		in.Deadline = &deadline
	}
	file, closeFile, err := formUpload(c, "file")
	if err != nil {
		return respondError(c, err)
	}
	defer closeFile()
	in.File = file

	if err := s.plans.Update(c.Request().Context(), callerID(c), in); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) listPlans(c echo.Context) error {
	page, err := s.plans.List(c.Request().Context(), pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (s *Server) awaitSubmitPlans(c echo.Context) error {
	page, err := s.plans.AwaitSubmitPlans(c.Request().Context(), callerID(c), pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

type idsRequest struct {
	IDs []int `json:"ids"`
}

func (s *Server) deletePlans(c echo.Context) error {
	var req idsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	if err := s.plans.Delete(c.Request().Context(), req.IDs); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) lockPlans(c echo.Context) error {
	var req idsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	if err := s.plans.Lock(c.Request().Context(), req.IDs); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) unlockPlans(c echo.Context) error {
	var req idsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	if err := s.plans.Unlock(c.Request().Context(), req.IDs); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) updateHistory(c echo.Context) error {
	planID, err := strconv.Atoi(c.QueryParam("id"))
	if err != nil {
		return badRequest(c, "id must be an integer")
	}
	page, err := s.plans.UpdateHistoryList(c.Request().Context(), planID, pageQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (s *Server) completeStatus(c echo.Context) error {
	planID, err := strconv.Atoi(c.QueryParam("id"))
	if err != nil {
		return badRequest(c, "id must be an integer")
	}
	complete := c.QueryParam("complete") == "true"
	q := pageQuery(c)
	page, err := s.plans.CompleteStatus(c.Request().Context(), planID, complete, q.Offset, q.Count)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}
