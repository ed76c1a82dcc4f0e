package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRecency(t *testing.T) {
	days := func(d int) *int { return &d }
	tests := []struct {
		in   *int
		want string
	}{
		{nil, "No activity"},
		{days(-3), "No activity"},
		{days(0), "Today"},
		{days(1), "Yesterday"},
		{days(6), "6 days ago"},
		{days(7), "1 week ago"},
		{days(20), "2 weeks ago"},
		{days(45), "1 month ago"},
		{days(200), "6 months ago"},
		{days(365), "1 year ago"},
		{days(1000), "2 years ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRecency(tt.in))
	}
}

func TestParseDateRange(t *testing.T) {
	start, end, err := ParseDateRange("2026-01-01T00:00:00Z", "2026-01-31T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2026, start.Year())
	assert.Equal(t, 30*24*time.Hour, end.Sub(start))

	start, end, err = ParseDateRange("", "")
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, end.Sub(start))

	_, _, err = ParseDateRange("yesterday", "")
	assert.Error(t, err)
	_, _, err = ParseDateRange("", "tomorrow")
	assert.Error(t, err)
	_, _, err = ParseDateRange("2026-02-01T00:00:00Z", "2026-01-01T00:00:00Z")
	assert.Error(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateJWT(secret, "user-1", "a@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)

	_, err = ValidateJWT(token, []byte("other-secret"))
	assert.Error(t, err)

	expired, err := GenerateJWT(secret, "user-1", "a@example.com", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(expired, secret)
	assert.Error(t, err)
}
