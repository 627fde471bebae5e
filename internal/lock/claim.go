package lock

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"

	"github.com/bashhack/dirlock/internal/errors"
)

// Claim is the per-attempt file carrying a candidate owner's token. The
// winning claim is hard-linked to the lock path.
type Claim struct {
	Path  string
	Token Token
}

// ClaimStore creates claim files, either next to the lock file or, when a
// scratch directory is configured, inside it under a hashed name.
type ClaimStore struct {
	scratchDir string
	host       string
	pid        int
	now        func() time.Time
}

// NewClaimStore creates a ClaimStore. A non-empty scratchDir is created if
// it does not exist yet.
func NewClaimStore(scratchDir, host string) (*ClaimStore, error) {
	if scratchDir != "" {
		if err := os.MkdirAll(scratchDir, 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create claim directory")
		}
	}
	if host == "" {
		host = localHostname()
	}

	return &ClaimStore{
		scratchDir: scratchDir,
		host:       host,
		pid:        os.Getpid(),
		now:        time.Now,
	}, nil
}

// ScratchDir returns the directory claims are redirected to, or "".
func (s *ClaimStore) ScratchDir() string {
	return s.scratchDir
}

// Create writes a fresh claim for the lock at lockPath. The content is
// fully on disk before the claim becomes visible under its final name.
func (s *ClaimStore) Create(lockPath string) (*Claim, error) {
	if s.scratchDir != "" {
		if err := os.MkdirAll(s.scratchDir, 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create claim directory")
		}
	}

	token := NewToken(s.host, s.pid, s.now())
	claim := &Claim{
		Path:  s.PathFor(lockPath, token),
		Token: token,
	}

	data, err := token.Marshal()
	if err != nil {
		return nil, err
	}

	if err := renameio.WriteFile(claim.Path, data, 0644); err != nil {
		_ = os.Remove(claim.Path)
		return nil, errors.Wrapf(err, "failed to write claim file %s", claim.Path)
	}

	return claim, nil
}

// PathFor returns where the claim for token on lockPath lives.
func (s *ClaimStore) PathFor(lockPath string, token Token) string {
	logical := lockPath + claimSeparator + token.String()
	if s.scratchDir == "" {
		return logical
	}
	return filepath.Join(s.scratchDir, ClaimName(logical))
}

// Discard removes a claim file. A missing file is not an error.
func (s *ClaimStore) Discard(claim *Claim) error {
	if claim == nil {
		return nil
	}
	if err := os.Remove(claim.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "failed to remove claim file %s", claim.Path)
	}
	return nil
}

// ClaimName returns the fixed-length file name used for a redirected claim:
// the hex SHA-256 of the logical claim path plus ".lock" (69 bytes).
func ClaimName(logical string) string {
	sum := sha256.Sum256([]byte(logical))
	return hex.EncodeToString(sum[:]) + ".lock"
}
