package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViolationStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    ViolationStatus
		to      ViolationStatus
		allowed bool
	}{
		{ViolationPermitted, ViolationWarning, true},
		{ViolationPermitted, ViolationDisciplinary, false},
		{ViolationPermitted, ViolationResolved, true},
		{ViolationPermitted, ViolationPermitted, false},
		{ViolationWarning, ViolationDisciplinary, true},
		{ViolationWarning, ViolationPermitted, false},
		{ViolationWarning, ViolationResolved, true},
		{ViolationDisciplinary, ViolationResolved, true},
		{ViolationDisciplinary, ViolationWarning, false},
		{ViolationDisciplinary, ViolationPermitted, false},
		{ViolationResolved, ViolationPermitted, false},
		{ViolationResolved, ViolationWarning, false},
		{ViolationResolved, ViolationDisciplinary, false},
		{ViolationResolved, ViolationResolved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestViolationStatusIsValid(t *testing.T) {
	assert.True(t, ViolationPermitted.IsValid())
	assert.True(t, ViolationResolved.IsValid())
	assert.False(t, ViolationStatus("escalated").IsValid())
	assert.False(t, ViolationStatus("").IsValid())
}

func TestSeverityRankStatus(t *testing.T) {
	assert.Equal(t, ViolationPermitted, RankPermitted.Status())
	assert.Equal(t, ViolationWarning, RankWarning.Status())
	assert.Equal(t, ViolationDisciplinary, RankDisciplinary.Status())

	// Out-of-range ranks still map to a sensible bucket.
	assert.Equal(t, ViolationPermitted, SeverityRank(0).Status())
	assert.Equal(t, ViolationDisciplinary, SeverityRank(7).Status())
}

func TestFormatCaseID(t *testing.T) {
	assert.Equal(t, "VIOL-2026-001", FormatCaseID(2026, 1))
	assert.Equal(t, "VIOL-2026-042", FormatCaseID(2026, 42))
	// Sequences past 999 widen instead of truncating.
	assert.Equal(t, "VIOL-2026-1000", FormatCaseID(2026, 1000))
}

func TestParseViolationTime(t *testing.T) {
	got, err := ParseViolationTime("08:30")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Hour())
	assert.Equal(t, 30, got.Minute())

	got, err = ParseViolationTime("14:05:59")
	require.NoError(t, err)
	assert.Equal(t, 59, got.Second())

	_, err = ParseViolationTime("8:30 AM")
	assert.Error(t, err)

	_, err = ParseViolationTime("")
	assert.Error(t, err)
}

func TestViolationOccurredAt(t *testing.T) {
	v := &Violation{
		ViolationDate: time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
		ViolationTime: "09:45",
	}

	at, err := v.OccurredAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 15, 9, 45, 0, 0, time.UTC), at)

	v.ViolationTime = "not-a-time"
	_, err = v.OccurredAt()
	assert.Error(t, err)
}
