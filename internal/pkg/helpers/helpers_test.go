package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		wantOffset uint64
		wantLimit  int
	}{
		{"first page", 1, 10, 0, 10},
		{"third page", 3, 20, 40, 20},
		{"zero page clamps to first", 0, 10, 0, 10},
		{"negative page clamps to first", -5, 10, 0, 10},
		{"zero size uses default", 2, 0, 10, 10},
		{"oversized page size uses default", 1, 500, 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := CalculateOffsetLimit(tt.page, tt.size)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(25, 2, 10)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, int64(25), info.TotalItems)

	// Page beyond the end clamps to the last page.
	info = NewPaginationInfo(25, 9, 10)
	assert.Equal(t, 3, info.CurrentPage)

	// An empty result set still reports one page.
	info = NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, info.TotalPages)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 5*time.Minute, ParseDuration("5m", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("bogus", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("", time.Hour))
}

func TestFirstOfMonth(t *testing.T) {
	in := time.Date(2026, time.March, 17, 14, 30, 45, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), FirstOfMonth(in))

	// Already the first of the month.
	first := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), FirstOfMonth(first))
}

func TestPeriod(t *testing.T) {
	assert.Equal(t, "2026-03", Period(time.Date(2026, time.March, 17, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-12", Period(time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC)))
}
