package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookly/bookly/internal/middleware"
	"github.com/bookly/bookly/internal/models"
	"github.com/bookly/bookly/internal/repo"
)

type Deps struct {
	Auth    *AuthHTTP
	Books   *BookHTTP
	Reviews *ReviewHTTP

	Guard *middleware.TokenGuard
	Users *repo.UserRepo

	RequireVerifiedEmail bool
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	anyRole := middleware.NewRoleGuard(d.Users, d.RequireVerifiedEmail, models.RoleAdmin, models.RoleUser)

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/signup", d.Auth.Signup)
	auth.GET("/verify/email-token/:token", d.Auth.VerifyEmail)
	auth.POST("/login", d.Auth.Login)
	auth.GET("/refresh_token", d.Auth.Refresh, d.Guard.RequireRefresh)
	auth.GET("/me", d.Auth.Me, d.Guard.RequireAccess, anyRole.Require)
	auth.GET("/logout", d.Auth.Logout, d.Guard.RequireAccess)
	auth.POST("/password-reset-request", d.Auth.PasswordResetRequest)
	auth.POST("/password-reset-confirm/:token", d.Auth.PasswordResetConfirm)

	books := api.Group("/books", d.Guard.RequireAccess, anyRole.Require)
	books.GET("", d.Books.List)
	books.GET("/search", d.Books.Search)
	books.GET("/:uid", d.Books.Get)
	books.POST("", d.Books.Create)
	books.PATCH("/:uid", d.Books.Update)
	books.DELETE("/:uid", d.Books.Delete)

	reviews := api.Group("/reviews", d.Guard.RequireAccess, anyRole.Require)
	reviews.POST("/book/:book_uid", d.Reviews.Add)
	reviews.GET("/book/:book_uid", d.Reviews.ForBook)
	reviews.DELETE("/:uid", d.Reviews.Delete)
}
