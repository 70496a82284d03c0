package sessions

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	logger := zap.NewNop()
	sessionID := uuid.New().String()

	token, err := signSessionToken(sessionID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, sessionID, parseSessionToken(token, logger))
}

func TestParseSessionTokenRejectsGarbage(t *testing.T) {
	logger := zap.NewNop()

	assert.Empty(t, parseSessionToken("not-a-token", logger))
	assert.Empty(t, parseSessionToken("", logger))

	// 署名を壊したトークンは拒否される
	token, err := signSessionToken("abc")
	require.NoError(t, err)
	tampered := token + "xx"
	assert.Empty(t, parseSessionToken(tampered, logger))
}

func TestSanitizePlayerName(t *testing.T) {
	tt := []struct {
		name string
		in   string
		want string
	}{
		{"前後の空白を除去", "  Mia  ", "Mia"},
		{"20文字以内はそのまま", "Leo", "Leo"},
		{"20文字で切り詰め", "abcdefghijklmnopqrstuvwxyz", "abcdefghijklmnopqrst"},
		{"マルチバイトも文字数で数える", "あいうえおかきくけこさしすせそたちつてとなに", "あいうえおかきくけこさしすせそたちつてと"},
		{"空白だけなら空になる", "   ", ""},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitizePlayerName(tc.in))
		})
	}
}
