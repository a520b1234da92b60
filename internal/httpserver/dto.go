package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bookly/bookly/internal/models"
)

type SignupRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r *SignupRequest) Validate() error {
	switch {
	case r.Username == "" || len(r.Username) > 20:
		return echo.NewHTTPError(http.StatusBadRequest, "username is required, 20 characters max")
	case !strings.Contains(r.Email, "@"):
		return echo.NewHTTPError(http.StatusBadRequest, "a valid email is required")
	case len(r.Password) < 6:
		return echo.NewHTTPError(http.StatusBadRequest, "password must be at least 6 characters")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirmRequest struct {
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}

type BookRequest struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Publisher     string `json:"publisher"`
	PublishedDate string `json:"published_date"`
	PageCount     int    `json:"page_count"`
	Language      string `json:"language"`
}

func (r *BookRequest) Validate() error {
	if r.Title == "" || r.Author == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title and author are required")
	}
	return nil
}

type ReviewRequest struct {
	ReviewText string `json:"review_text"`
	Rating     int    `json:"rating"`
}

func (r *ReviewRequest) Validate() error {
	if r.Rating < 0 || r.Rating > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 0 and 5")
	}
	return nil
}

// UserSummary is the outward user shape; the password hash never leaves
// the model thanks to its json:"-" tag, this trims the rest.
type UserSummary struct {
	UID       string `json:"uid"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func summarize(u *models.User) UserSummary {
	return UserSummary{
		UID:       u.UID.String(),
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
