package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeduplicateTracks(t *testing.T) {
	tracks := []Track{
		{ID: "1", Title: "Echoes", Artist: "Floyd"},
		{ID: "2", Title: "Time", Artist: "Floyd"},
		{ID: "3", Title: "echoes", Artist: "FLOYD"}, // dup of 1, different case
		{ID: "4", Title: "Echoes", Artist: "Covers Inc"},
	}

	out := DeduplicateTracks(tracks)

	assert.Len(t, out, 3)
	// First occurrence wins and order is preserved.
	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, "2", out[1].ID)
	assert.Equal(t, "4", out[2].ID)
}

func TestDeduplicateTracks_Idempotent(t *testing.T) {
	tracks := []Track{
		{ID: "1", Title: "A", Artist: "X"},
		{ID: "2", Title: "B", Artist: "Y"},
	}

	once := DeduplicateTracks(tracks)
	twice := DeduplicateTracks(once)
	assert.Equal(t, once, twice)
}

func TestDeduplicateTracks_Empty(t *testing.T) {
	assert.Empty(t, DeduplicateTracks(nil))
}

func TestDedupKey(t *testing.T) {
	a := Track{Title: "Blue Train", Artist: "Coltrane"}
	b := Track{Title: "blue train", Artist: "COLTRANE"}
	assert.Equal(t, a.DedupKey(), b.DedupKey())
	assert.Equal(t, "coltrane - blue train", a.DedupKey())
}
