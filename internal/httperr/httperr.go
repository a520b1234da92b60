package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookly/bookly/internal/tokens"
)

// Sentinel errors for everything the API deliberately rejects. Guards and
// services return these; nothing else about a failure leaks outward.
var (
	ErrMissingToken           = errors.New("missing or malformed authorization header")
	ErrRevokedToken           = errors.New("token has been revoked")
	ErrAccessTokenRequired    = errors.New("access token required")
	ErrRefreshTokenRequired   = errors.New("refresh token required")
	ErrUserExists             = errors.New("user with email already exists")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrInsufficientPermission = errors.New("insufficient permission")
	ErrUserNotFound           = errors.New("user not found")
	ErrAccountNotVerified     = errors.New("account not verified")
	ErrBookNotFound           = errors.New("book not found")
	ErrReviewNotFound         = errors.New("review not found")
	ErrPasswordMismatch       = errors.New("passwords do not match")
)

type entry struct {
	status  int
	code    string
	message string
}

// The full taxonomy lives in this one table; handlers never pick status
// codes themselves.
var table = []struct {
	err   error
	entry entry
}{
	{ErrMissingToken, entry{http.StatusUnauthorized, "missing_or_malformed_token", "Provide a bearer token in the Authorization header"}},
	{tokens.ErrInvalidToken, entry{http.StatusUnauthorized, "invalid_or_expired_token", "Token is invalid or expired"}},
	{ErrRevokedToken, entry{http.StatusUnauthorized, "revoked_token", "Token has been revoked, please log in again"}},
	{ErrAccessTokenRequired, entry{http.StatusForbidden, "access_token_required", "Please provide a valid access token"}},
	{ErrRefreshTokenRequired, entry{http.StatusForbidden, "refresh_token_required", "Please provide a valid refresh token"}},
	{ErrUserExists, entry{http.StatusForbidden, "user_exists", "User with email already exists"}},
	{ErrInvalidCredentials, entry{http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"}},
	{ErrInsufficientPermission, entry{http.StatusForbidden, "insufficient_permission", "You do not have permission to perform this action"}},
	{ErrUserNotFound, entry{http.StatusNotFound, "user_not_found", "User not found"}},
	{ErrAccountNotVerified, entry{http.StatusForbidden, "account_not_verified", "Please verify your email address"}},
	{ErrBookNotFound, entry{http.StatusNotFound, "book_not_found", "Book not found"}},
	{ErrReviewNotFound, entry{http.StatusNotFound, "review_not_found", "Review not found"}},
	{ErrPasswordMismatch, entry{http.StatusBadRequest, "passwords_do_not_match", "Both passwords should match"}},
}

// Handler maps taxonomy errors to their fixed status and machine-readable
// code. Anything unrecognized, storage and driver errors included, is
// generalized to an opaque 500 so internals never leak.
func Handler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		for _, row := range table {
			if errors.Is(err, row.err) {
				_ = c.JSON(row.entry.status, echo.Map{
					"message":    row.entry.message,
					"error_code": row.entry.code,
				})
				return
			}
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			msg, ok := httpErr.Message.(string)
			if !ok {
				msg = http.StatusText(httpErr.Code)
			}
			_ = c.JSON(httpErr.Code, echo.Map{
				"message":    msg,
				"error_code": "bad_request",
			})
			return
		}

		log.Error("unhandled error", "path", c.Request().URL.Path, "error", err)
		_ = c.JSON(http.StatusInternalServerError, echo.Map{
			"message":    "Oops! Something went wrong",
			"error_code": "server_error",
		})
	}
}
