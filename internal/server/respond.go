package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"planboard/internal/services"
	"planboard/pkg/planerrors"
)

// respondError maps the domain error taxonomy onto HTTP statuses.
func respondError(c echo.Context, err error) error {
	var batch *planerrors.BatchError
	if errors.As(err, &batch) {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": batch.Failures})
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, planerrors.ErrPlanNotFound),
		errors.Is(err, planerrors.ErrSubmissionNotFound),
		errors.Is(err, planerrors.ErrAccountNotFound),
		errors.Is(err, planerrors.ErrFileMissing):
		status = http.StatusNotFound
	case errors.Is(err, planerrors.ErrPlanLocked),
		errors.Is(err, planerrors.ErrDeadlinePassed),
		errors.Is(err, planerrors.ErrAlreadyAudited),
		errors.Is(err, planerrors.ErrNoSubmissions):
		status = http.StatusConflict
	case errors.Is(err, planerrors.ErrFileTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, planerrors.ErrNoAccess),
		errors.Is(err, planerrors.ErrAccountDisabled):
		status = http.StatusForbidden
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

// streamFile writes a stored file as an attachment download.
func streamFile(c echo.Context, file *services.FileDownload) error {
	defer file.Body.Close()
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+file.Name+`"`)
	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(file.Size, 10))
	return c.Stream(http.StatusOK, echo.MIMEOctetStream, file.Body)
}
