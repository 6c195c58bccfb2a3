// Package idgen issues temporary identifiers for entities that have not been
// persisted remotely yet.
//
// Temporary IDs look like "tmp_lx2k9f3a_9c1e0b7d4a2f". They never have the
// canonical UUID shape the backend issues, so a human reading logs or rows can
// always tell the two apart.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TempPrefix starts every temporary ID
const TempPrefix = "tmp_"

// Generator produces new temporary IDs
type Generator interface {
	NewID() string
}

// Random is the default generator: a base36 millisecond timestamp plus 48 random bits
type Random struct{}

// NewID returns a fresh temporary ID
func (Random) NewID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Errorf("idgen: read random bytes: %w", err))
	}
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return TempPrefix + ts + "_" + hex.EncodeToString(b)
}

// Sequence is a deterministic generator for tests and fixtures
type Sequence struct {
	Prefix string

	mu   sync.Mutex
	next int
}

// NewID returns Prefix followed by an increasing counter
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	prefix := s.Prefix
	if prefix == "" {
		prefix = TempPrefix
	}
	return fmt.Sprintf("%s%d", prefix, s.next)
}

// IsTemporary reports whether id was produced by this package
func IsTemporary(id string) bool {
	return strings.HasPrefix(id, TempPrefix)
}

// IsCanonical reports whether id has the backend's canonical UUID v4 shape.
// Sync decisions use models.SyncState; this is for diagnostics and row decoding.
func IsCanonical(id string) bool {
	if len(id) != 36 {
		return false
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return u.Version() == 4 && u.Variant() == uuid.RFC4122
}
