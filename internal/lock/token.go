package lock

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/bashhack/dirlock/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Token identifies one acquisition attempt of one process. It is written
// into the claim file and compared on release so a process never removes a
// lock it does not own.
type Token struct {
	Host      string    `json:"host"`
	PID       int       `json:"pid"`
	Nonce     uuid.UUID `json:"nonce"`
	CreatedAt time.Time `json:"created_at"`
}

// NewToken creates a token with a fresh random nonce.
func NewToken(host string, pid int, now time.Time) Token {
	return Token{
		Host:      host,
		PID:       pid,
		Nonce:     uuid.New(),
		CreatedAt: now.UTC().Round(0),
	}
}

// Equal reports whether t and other describe the same attempt.
func (t Token) Equal(other Token) bool {
	return t.Host == other.Host &&
		t.PID == other.PID &&
		t.Nonce == other.Nonce &&
		t.CreatedAt.Equal(other.CreatedAt)
}

// Age returns how long ago the token was created.
func (t Token) Age(now time.Time) time.Duration {
	return now.Sub(t.CreatedAt)
}

// Expired reports whether the token is older than lifetime.
func (t Token) Expired(now time.Time, lifetime time.Duration) bool {
	return t.Age(now) > lifetime
}

// String renders the token fields used in claim file names.
func (t Token) String() string {
	return fmt.Sprintf("%s%s%d%s%s", t.Host, claimSeparator, t.PID, claimSeparator, t.Nonce)
}

// Marshal encodes the token as the claim file content.
func (t Token) Marshal() ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode claim token")
	}
	return append(data, '\n'), nil
}

// ParseToken decodes claim file content.
func ParseToken(data []byte) (Token, error) {
	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return Token{}, errors.Wrap(err, "invalid claim token")
	}
	if t.Nonce == uuid.Nil || t.PID <= 0 || t.CreatedAt.IsZero() {
		return Token{}, errors.New("invalid claim token: missing fields")
	}
	return t, nil
}

// localHostname returns the machine's own name without any DNS lookup;
// resolving a fully qualified name can take seconds on misconfigured hosts.
func localHostname() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "localhost"
	}
	return host
}
