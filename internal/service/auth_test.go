package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bookly/bookly/internal/hash"
	"github.com/bookly/bookly/internal/httperr"
	"github.com/bookly/bookly/internal/mail"
	"github.com/bookly/bookly/internal/models"
	"github.com/bookly/bookly/internal/repo"
	"github.com/bookly/bookly/internal/tokens"
)

type fakeRegistry struct {
	mu      sync.Mutex
	entries map[string]time.Duration
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{entries: make(map[string]time.Duration)}
}

func (f *fakeRegistry) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ttl > 0 {
		f.entries[jti] = ttl
	}
	return nil
}

func (f *fakeRegistry) IsRevoked(ctx context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[jti]
	return ok, nil
}

type fakeMailer struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (f *fakeMailer) Queue(msg mail.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
}

func (f *fakeMailer) sent() []mail.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mail.Message(nil), f.messages...)
}

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Book{}, &models.Review{}))
	return db
}

func newTestAuthService(t *testing.T) (*AuthService, *fakeRegistry, *fakeMailer) {
	t.Helper()

	codec, err := tokens.NewCodec([]byte("test-jwt-secret"), "HS256", time.Hour, 48*time.Hour)
	require.NoError(t, err)

	registry := newFakeRegistry()
	mailer := &fakeMailer{}

	svc := &AuthService{
		Users:    &repo.UserRepo{DB: initTestDB(t)},
		Hasher:   hash.New(2),
		Codec:    codec,
		Confirm:  tokens.NewConfirmCodec([]byte("test-confirm-secret"), time.Hour),
		Registry: registry,
		Mailer:   mailer,
		Domain:   "localhost:8080",
	}
	return svc, registry, mailer
}

func signupInput() SignupInput {
	return SignupInput{
		Username:  "test_user",
		Email:     "a@x.com",
		Password:  "secret1",
		FirstName: "Test",
		LastName:  "User",
	}
}

func TestAuthService_Signup(t *testing.T) {
	t.Parallel()

	svc, _, mailer := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.IsVerified)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NotEmpty(t, user.UID)

	sent := mailer.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"a@x.com"}, sent[0].Recipients)
	assert.Contains(t, sent[0].HTML, "/api/v1/auth/verify/email-token/")
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	dup := signupInput()
	dup.Username = "someone_else"
	_, err = svc.Signup(ctx, dup)
	assert.ErrorIs(t, err, httperr.ErrUserExists)
}

// Unknown email and wrong password must be indistinguishable.
func TestAuthService_Login_EnumerationResistance(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	res, wrongPass := svc.Login(ctx, "a@x.com", "not-the-password")
	assert.Nil(t, res)
	res, noUser := svc.Login(ctx, "nobody@x.com", "secret1")
	assert.Nil(t, res)

	assert.ErrorIs(t, wrongPass, httperr.ErrInvalidCredentials)
	assert.ErrorIs(t, noUser, httperr.ErrInvalidCredentials)
	assert.Equal(t, wrongPass, noUser)
}

func TestAuthService_Login_IssuesBothTokenClasses(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	res, err := svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, user.UID, res.User.UID)

	access, err := svc.Codec.Decode(res.AccessToken)
	require.NoError(t, err)
	refresh, err := svc.Codec.Decode(res.RefreshToken)
	require.NoError(t, err)

	assert.False(t, access.Refresh)
	assert.True(t, refresh.Refresh)
	assert.Equal(t, user.UID.String(), access.User.UID)
	assert.Equal(t, user.Email, access.User.Email)
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestAuthService_Logout_RevokesJTI(t *testing.T) {
	t.Parallel()

	svc, registry, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	res, err := svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	claims, err := svc.Codec.Decode(res.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))

	revoked, err := registry.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	// Decode alone still accepts the token; only the registry knows.
	_, err = svc.Codec.Decode(res.AccessToken)
	assert.NoError(t, err)
}

func TestAuthService_Refresh(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	res, err := svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	refreshClaims, err := svc.Codec.Decode(res.RefreshToken)
	require.NoError(t, err)

	accessToken, err := svc.Refresh(ctx, refreshClaims)
	require.NoError(t, err)

	claims, err := svc.Codec.Decode(accessToken)
	require.NoError(t, err)
	assert.False(t, claims.Refresh)
	assert.Equal(t, refreshClaims.User, claims.User)
}

func TestAuthService_Refresh_PastEmbeddedExpiry(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)

	expired := &tokens.SessionClaims{
		User:    tokens.UserClaims{Email: "a@x.com", UID: "uid", Role: "user"},
		Refresh: true,
	}
	_, err := svc.Refresh(context.Background(), expired)
	assert.ErrorIs(t, err, tokens.ErrInvalidToken)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)
	require.False(t, user.IsVerified)

	token, err := svc.Confirm.Issue(user.Email, tokens.PurposeEmailVerification)
	require.NoError(t, err)

	require.NoError(t, svc.VerifyEmail(ctx, token))

	updated, err := svc.Users.ByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.IsVerified)
}

func TestAuthService_VerifyEmail_BadToken(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	err := svc.VerifyEmail(context.Background(), "garbage")
	assert.ErrorIs(t, err, tokens.ErrInvalidToken)
}

func TestAuthService_PasswordReset(t *testing.T) {
	t.Parallel()

	svc, _, mailer := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, signupInput())
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "a@x.com"))
	sent := mailer.sent()
	require.Len(t, sent, 2) // verification mail + reset mail
	assert.Contains(t, sent[1].HTML, "/api/v1/auth/password-reset-confirm/")

	token, err := svc.Confirm.Issue("a@x.com", tokens.PurposePasswordReset)
	require.NoError(t, err)

	err = svc.ConfirmPasswordReset(ctx, token, "newsecret", "different")
	assert.ErrorIs(t, err, httperr.ErrPasswordMismatch)

	require.NoError(t, svc.ConfirmPasswordReset(ctx, token, "newsecret", "newsecret"))

	res, err := svc.Login(ctx, "a@x.com", "newsecret")
	require.NoError(t, err)
	require.NotNil(t, res)

	_, err = svc.Login(ctx, "a@x.com", "secret1")
	assert.ErrorIs(t, err, httperr.ErrInvalidCredentials)
}

func TestAuthService_PasswordResetRequest_UnknownEmailStaysQuiet(t *testing.T) {
	t.Parallel()

	svc, _, mailer := newTestAuthService(t)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "nobody@x.com"))
	assert.Empty(t, mailer.sent())
}
