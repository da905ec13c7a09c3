package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/technotes/server/internal/logging"
	"github.com/technotes/server/internal/service"
)

type NotesHTTP struct {
	Svc *service.NoteService
}

type noteRequest struct {
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

func (h *NotesHTTP) List(c echo.Context) error {
	notes, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, notes)
}

func (h *NotesHTTP) Get(c echo.Context) error {
	note, err := h.Svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, note)
}

func (h *NotesHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notes_create")

	var req noteRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	note, err := h.Svc.Create(ctx, service.NoteInput{
		UserID:    req.UserID,
		Title:     req.Title,
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, note)
}

func (h *NotesHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notes_update")

	var req noteRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	note, err := h.Svc.Update(ctx, c.Param("id"), service.NoteInput{
		UserID:    req.UserID,
		Title:     req.Title,
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, note)
}

func (h *NotesHTTP) Delete(c echo.Context) error {
	note, err := h.Svc.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Note " + strconv.FormatUint(uint64(note.Ticket), 10) + " deleted",
	})
}

func (h *NotesHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()

	query := c.QueryParam("q")
	from, _ := strconv.Atoi(c.QueryParam("from"))
	size, err := strconv.Atoi(c.QueryParam("size"))
	if err != nil || size <= 0 || size > 100 {
		size = 20
	}

	total, notes, err := h.Svc.Search(ctx, query, from, size)
	if err != nil {
		if errors.Is(err, service.ErrSearchDisabled) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not available")
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total": total,
		"notes": notes,
	})
}
