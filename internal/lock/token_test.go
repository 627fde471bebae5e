package lock

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 123, time.FixedZone("X", 3600))
	a := NewToken("build-01", 42, now)
	b := NewToken("build-01", 42, now)

	assert.Equal(t, "build-01", a.Host)
	assert.Equal(t, 42, a.PID)
	assert.NotEqual(t, uuid.Nil, a.Nonce)
	assert.True(t, a.CreatedAt.Equal(now))
	assert.Equal(t, time.UTC, a.CreatedAt.Location())

	assert.NotEqual(t, a.Nonce, b.Nonce, "every attempt gets its own nonce")
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(a))
}

func TestToken_MarshalRoundTrip(t *testing.T) {
	token := NewToken("build-01", 42, time.Now())

	data, err := token.Marshal()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "\n"))

	parsed, err := ParseToken(data)
	require.NoError(t, err)
	assert.True(t, token.Equal(parsed))
}

func TestParseToken_Invalid(t *testing.T) {
	tests := map[string]string{
		"Empty":        "",
		"NotJSON":      "12345",
		"MissingNonce": `{"host":"h","pid":1,"created_at":"2024-01-01T00:00:00Z"}`,
		"ZeroPID":      `{"host":"h","pid":0,"nonce":"7d444840-9dc0-11d1-b245-5ffdce74fad2","created_at":"2024-01-01T00:00:00Z"}`,
		"MissingTime":  `{"host":"h","pid":1,"nonce":"7d444840-9dc0-11d1-b245-5ffdce74fad2"}`,
		"BadNonce":     `{"host":"h","pid":1,"nonce":"nope","created_at":"2024-01-01T00:00:00Z"}`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken([]byte(content))
			assert.Error(t, err)
		})
	}
}

func TestToken_Expired(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	token := NewToken("h", 1, created)

	tests := map[string]struct {
		now      time.Time
		lifetime time.Duration
		expected bool
	}{
		"Fresh":          {now: created.Add(time.Minute), lifetime: time.Hour, expected: false},
		"ExactlyAtLimit": {now: created.Add(time.Hour), lifetime: time.Hour, expected: false},
		"PastLimit":      {now: created.Add(time.Hour + time.Nanosecond), lifetime: time.Hour, expected: true},
		"DefaultYear":    {now: created.Add(364 * 24 * time.Hour), lifetime: DefaultLifetime, expected: false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expected, token.Expired(test.now, test.lifetime))
		})
	}
}

func TestToken_String(t *testing.T) {
	token := NewToken("build-01", 42, time.Now())
	assert.Equal(t, "build-01"+claimSeparator+"42"+claimSeparator+token.Nonce.String(), token.String())
}
