package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bookly/bookly/internal/blacklist"
	"github.com/bookly/bookly/internal/events"
	"github.com/bookly/bookly/internal/hash"
	"github.com/bookly/bookly/internal/httperr"
	"github.com/bookly/bookly/internal/logging"
	"github.com/bookly/bookly/internal/mail"
	"github.com/bookly/bookly/internal/models"
	"github.com/bookly/bookly/internal/repo"
	"github.com/bookly/bookly/internal/tokens"
)

// AuthService composes the credential store, the password hasher, both
// token codecs and the revocation registry into the account flows.
type AuthService struct {
	Users    *repo.UserRepo
	Hasher   *hash.Hasher
	Codec    *tokens.Codec
	Confirm  *tokens.ConfirmCodec
	Registry blacklist.Registry
	Mailer   mail.Sender
	Producer events.Publisher

	// Domain builds the absolute links inside verification and reset mails.
	Domain string
}

type SignupInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	existing, err := s.Users.ByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, httperr.ErrUserExists
	}

	pwHash, err := s.Hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: pwHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         models.RoleUser,
		IsVerified:   false,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.sendVerificationMail(ctx, user.Email)
	s.publish(ctx, user, events.TypeUserRegistered)

	l.Info("user created", "uid", user.UID)
	return user, nil
}

func (s *AuthService) sendVerificationMail(ctx context.Context, email string) {
	l := logging.FromContext(ctx)

	token, err := s.Confirm.Issue(email, tokens.PurposeEmailVerification)
	if err != nil {
		l.Error("cannot issue verification token", "error", err)
		return
	}
	link := fmt.Sprintf("http://%s/api/v1/auth/verify/email-token/%s", s.Domain, token)
	s.Mailer.Queue(mail.Message{
		Recipients: []string{email},
		Subject:    "Verify your Email",
		HTML: fmt.Sprintf(`<h1>Verify Email</h1>
<p>Please click this <a href="%s">link</a> to verify it's you</p>`, link),
	})
}

func (s *AuthService) VerifyEmail(ctx context.Context, confirmToken string) error {
	email, err := s.Confirm.Decode(confirmToken, tokens.PurposeEmailVerification)
	if err != nil {
		return err
	}

	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return httperr.ErrUserNotFound
	}

	return s.Users.Update(ctx, user.UID, map[string]interface{}{"is_verified": true})
}

// Login never distinguishes an unknown email from a wrong password; both
// collapse to the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.Hasher.Verify(ctx, password, user.PasswordHash) {
		l.Warn("login failed")
		return nil, httperr.ErrInvalidCredentials
	}

	claims := tokens.UserClaims{
		Email: user.Email,
		UID:   user.UID.String(),
		Role:  user.Role,
	}
	accessToken, err := s.Codec.Issue(claims, 0, false)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.Codec.Issue(claims, 0, true)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, user, events.TypeUserLoggedIn)

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// Refresh mints a new access token from validated refresh-token claims.
// The guard already verified signature and class; the embedded expiry is
// re-checked here before minting.
func (s *AuthService) Refresh(ctx context.Context, claims *tokens.SessionClaims) (string, error) {
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(time.Now()) {
		return "", tokens.ErrInvalidToken
	}
	return s.Codec.Issue(claims.User, 0, false)
}

// Logout blacklists the presented access token's jti for the token's
// remaining lifetime. The refresh token dies by natural expiry.
func (s *AuthService) Logout(ctx context.Context, claims *tokens.SessionClaims) error {
	if err := s.Registry.Revoke(ctx, claims.ID, s.Codec.Remaining(claims)); err != nil {
		return err
	}

	if user, err := s.Users.ByEmail(ctx, claims.User.Email); err == nil && user != nil {
		s.publish(ctx, user, events.TypeUserLoggedOut)
	}
	return nil
}

// RequestPasswordReset always succeeds from the caller's perspective so
// account existence cannot be probed.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.password_reset")

	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		l.Info("reset requested for unknown email")
		return nil
	}

	token, err := s.Confirm.Issue(email, tokens.PurposePasswordReset)
	if err != nil {
		l.Error("cannot issue reset token", "error", err)
		return nil
	}
	link := fmt.Sprintf("http://%s/api/v1/auth/password-reset-confirm/%s", s.Domain, token)
	s.Mailer.Queue(mail.Message{
		Recipients: []string{email},
		Subject:    "Reset Your Password",
		HTML: fmt.Sprintf(`<h1>Reset Your Password</h1>
<p>Please click this <a href="%s">link</a> to reset your password</p>`, link),
	})
	return nil
}

func (s *AuthService) ConfirmPasswordReset(ctx context.Context, confirmToken, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return httperr.ErrPasswordMismatch
	}

	email, err := s.Confirm.Decode(confirmToken, tokens.PurposePasswordReset)
	if err != nil {
		return err
	}

	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return httperr.ErrUserNotFound
	}

	pwHash, err := s.Hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}
	return s.Users.Update(ctx, user.UID, map[string]interface{}{"password_hash": pwHash})
}

func (s *AuthService) publish(ctx context.Context, user *models.User, eventType string) {
	if s.Producer == nil {
		return
	}
	l := logging.FromContext(ctx)

	event := map[string]interface{}{
		"type":     eventType,
		"user_uid": user.UID.String(),
		"username": user.Username,
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Producer.Publish(pubCtx, user.UID.String(), event); err != nil {
		l.Error("event publish failed", "type", eventType, "error", err)
	}
}
