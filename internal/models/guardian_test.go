package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func guardianAt(id string, minute int, primary bool) Guardian {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return Guardian{ID: id, CreatedAt: base.Add(time.Duration(minute) * time.Minute), IsPrimary: primary}
}

func countPrimary(guardians []Guardian) int {
	n := 0
	for _, g := range guardians {
		if g.IsPrimary {
			n++
		}
	}
	return n
}

func TestResolvePrimaryGuardianPromotesEarliest(t *testing.T) {
	set := []Guardian{guardianAt("b", 5, false), guardianAt("a", 1, false)}
	fix := ResolvePrimaryGuardian(set)

	assert.Equal(t, "a", fix.PrimaryID)
	assert.True(t, fix.Promoted)
	fix.Apply(set)
	assert.Equal(t, 1, countPrimary(set))
	assert.True(t, set[1].IsPrimary)
}

func TestResolvePrimaryGuardianKeepsEarliestFlagged(t *testing.T) {
	set := []Guardian{guardianAt("a", 1, false), guardianAt("b", 2, true), guardianAt("c", 3, true)}
	fix := ResolvePrimaryGuardian(set)

	assert.Equal(t, "b", fix.PrimaryID)
	assert.False(t, fix.Promoted)
	assert.Equal(t, []string{"c"}, fix.Demoted)
	fix.Apply(set)
	assert.Equal(t, 1, countPrimary(set))
}

func TestResolvePrimaryGuardianIsIdempotent(t *testing.T) {
	set := []Guardian{guardianAt("a", 1, true), guardianAt("b", 2, false)}
	fix := ResolvePrimaryGuardian(set)

	assert.False(t, fix.Changed())
	assert.Equal(t, "a", fix.PrimaryID)
}

func TestResolvePrimaryGuardianTieBreaksOnID(t *testing.T) {
	set := []Guardian{guardianAt("z", 1, false), guardianAt("m", 1, false)}
	assert.Equal(t, "m", ResolvePrimaryGuardian(set).PrimaryID)
}

func TestResolvePrimaryGuardianEmpty(t *testing.T) {
	fix := ResolvePrimaryGuardian(nil)
	assert.Empty(t, fix.PrimaryID)
	assert.False(t, fix.Changed())
}
