package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookly/bookly/internal/logging"
	"github.com/bookly/bookly/internal/middleware"
	"github.com/bookly/bookly/internal/service"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := h.Svc.Signup(ctx, service.SignupInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Account created! Check your email to verify it's you",
		"user":    summarize(user),
	})
}

func (h *AuthHTTP) VerifyEmail(c echo.Context) error {
	if err := h.Svc.VerifyEmail(c.Request().Context(), c.Param("token")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Account verified successfully",
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	l.Info("login successful", "uid", res.User.UID)
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "Login successful",
		"access_token":  res.AccessToken,
		"refresh_token": res.RefreshToken,
		"user":          summarize(res.User),
	})
}

// Refresh runs behind the refresh-token guard; claims are already
// validated, class-checked and revocation-checked.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)

	accessToken, err := h.Svc.Refresh(c.Request().Context(), claims)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": accessToken,
	})
}

// Me runs behind the access-token and role guards; the role guard already
// resolved the live user row.
func (h *AuthHTTP) Me(c echo.Context) error {
	user := middleware.CurrentUser(c)
	return c.JSON(http.StatusOK, summarize(user))
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)

	if err := h.Svc.Logout(c.Request().Context(), claims); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Logged out successfully",
	})
}

func (h *AuthHTTP) PasswordResetRequest(c echo.Context) error {
	var req PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Please check your email for instructions to reset your password",
	})
}

func (h *AuthHTTP) PasswordResetConfirm(c echo.Context) error {
	var req PasswordResetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	err := h.Svc.ConfirmPasswordReset(c.Request().Context(), c.Param("token"), req.NewPassword, req.ConfirmNewPassword)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Password reset successfully",
	})
}
