package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bookly/bookly/internal/httperr"
	"github.com/bookly/bookly/internal/middleware"
	"github.com/bookly/bookly/internal/service"
)

type ReviewHTTP struct {
	Svc *service.ReviewService
}

func (h *ReviewHTTP) Add(c echo.Context) error {
	bookUID, err := uuid.Parse(c.Param("book_uid"))
	if err != nil {
		return httperr.ErrBookNotFound
	}

	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	review, err := h.Svc.Add(c.Request().Context(), bookUID, middleware.CurrentUser(c), service.ReviewInput{
		ReviewText: req.ReviewText,
		Rating:     req.Rating,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, review)
}

func (h *ReviewHTTP) ForBook(c echo.Context) error {
	bookUID, err := uuid.Parse(c.Param("book_uid"))
	if err != nil {
		return httperr.ErrBookNotFound
	}

	reviews, err := h.Svc.ForBook(c.Request().Context(), bookUID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHTTP) Delete(c echo.Context) error {
	uid, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return httperr.ErrReviewNotFound
	}

	if err := h.Svc.Delete(c.Request().Context(), uid, middleware.CurrentUser(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
