package idgen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRandomIDsAreUniqueAndTemporary(t *testing.T) {
	var g Random
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := g.NewID()
		assert.True(t, IsTemporary(id), id)
		assert.False(t, IsCanonical(id), id)
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestSequence(t *testing.T) {
	s := &Sequence{Prefix: "tmp_u"}
	assert.Equal(t, "tmp_u1", s.NewID())
	assert.Equal(t, "tmp_u2", s.NewID())

	var def Sequence
	assert.Equal(t, "tmp_1", def.NewID())
}

func TestIsCanonical(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{uuid.NewString(), true},
		{"9b2f6a3e-8c1d-4f7a-9e2b-3c4d5e6f7a8b", true},
		{"11111111-1111-1111-1111-111111111111", false}, // version 1 shape
		{"tmp_lx2k9f3a_9c1e0b7d4a2f", false},
		{"", false},
		{"not-a-uuid", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsCanonical(tt.id), tt.id)
	}
}
