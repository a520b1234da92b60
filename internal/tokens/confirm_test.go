package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	c := NewConfirmCodec([]byte("confirm-secret"), 0)

	raw, err := c.Issue("a@x.com", PurposeEmailVerification)
	require.NoError(t, err)

	email, err := c.Decode(raw, PurposeEmailVerification)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)
}

func TestConfirmCodec_PurposeMismatch(t *testing.T) {
	t.Parallel()

	c := NewConfirmCodec([]byte("confirm-secret"), 0)

	raw, err := c.Issue("a@x.com", PurposePasswordReset)
	require.NoError(t, err)

	email, err := c.Decode(raw, PurposeEmailVerification)
	assert.Empty(t, email)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConfirmCodec_SessionTokenRejected(t *testing.T) {
	t.Parallel()

	// A session token signed with the same bytes must not double as a
	// confirmation token.
	codec, err := NewCodec([]byte("shared-secret"), "HS256", time.Hour, time.Hour)
	require.NoError(t, err)
	session, err := codec.Issue(UserClaims{Email: "a@x.com", UID: "uid", Role: "user"}, 0, false)
	require.NoError(t, err)

	c := NewConfirmCodec([]byte("shared-secret"), 0)
	email, err := c.Decode(session, PurposeEmailVerification)
	assert.Empty(t, email)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConfirmCodec_Expired(t *testing.T) {
	t.Parallel()

	c := NewConfirmCodec([]byte("confirm-secret"), time.Hour)

	raw, err := c.Issue("a@x.com", PurposeEmailVerification)
	require.NoError(t, err)

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	email, err := c.Decode(raw, PurposeEmailVerification)
	assert.Empty(t, email)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
