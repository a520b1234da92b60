package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bookly/bookly/internal/httperr"
	"github.com/bookly/bookly/internal/middleware"
	"github.com/bookly/bookly/internal/service"
)

type BookHTTP struct {
	Svc *service.BookService
}

func (h *BookHTTP) List(c echo.Context) error {
	books, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, books)
}

func (h *BookHTTP) Get(c echo.Context) error {
	uid, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return httperr.ErrBookNotFound
	}

	book, err := h.Svc.Get(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

func (h *BookHTTP) Create(c echo.Context) error {
	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	owner := middleware.CurrentUser(c)
	book, err := h.Svc.Create(c.Request().Context(), service.BookInput{
		Title:         req.Title,
		Author:        req.Author,
		Publisher:     req.Publisher,
		PublishedDate: req.PublishedDate,
		PageCount:     req.PageCount,
		Language:      req.Language,
	}, owner.UID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *BookHTTP) Update(c echo.Context) error {
	uid, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return httperr.ErrBookNotFound
	}

	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	book, err := h.Svc.Update(c.Request().Context(), uid, service.BookInput{
		Title:         req.Title,
		Author:        req.Author,
		Publisher:     req.Publisher,
		PublishedDate: req.PublishedDate,
		PageCount:     req.PageCount,
		Language:      req.Language,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

func (h *BookHTTP) Delete(c echo.Context) error {
	uid, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return httperr.ErrBookNotFound
	}

	if err := h.Svc.Delete(c.Request().Context(), uid); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BookHTTP) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	from, _ := strconv.Atoi(c.QueryParam("from"))
	size, _ := strconv.Atoi(c.QueryParam("size"))

	books, total, err := h.Svc.Search(c.Request().Context(), query, from, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total": total,
		"books": books,
	})
}
