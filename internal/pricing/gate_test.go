package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailabilityRemaining(t *testing.T) {
	assert.Equal(t, 5, KnownAvailability(10, 5).Remaining())
	assert.Equal(t, 0, KnownAvailability(10, 10).Remaining())
	// oversold never goes negative
	assert.Equal(t, 0, KnownAvailability(10, 12).Remaining())
	assert.Equal(t, 10, AssumedAvailability(10).Remaining())
	assert.False(t, AssumedAvailability(10).Known)
}

func TestGateState(t *testing.T) {
	tests := []struct {
		name  string
		avail Availability
		quota Quota
		want  SelectionState
	}{
		{
			"available",
			KnownAvailability(10, 2),
			Quota{Exists: true, MaxPerUser: 4, Confirmed: 1},
			StateAvailable,
		},
		{
			"maxed wins even with stock",
			KnownAvailability(10, 0),
			Quota{Exists: true, MaxPerUser: 2, Confirmed: 2},
			StateMaxed,
		},
		{
			"maxed past the limit",
			KnownAvailability(10, 0),
			Quota{Exists: true, MaxPerUser: 2, Confirmed: 3},
			StateMaxed,
		},
		{
			"pending warning before sold out",
			KnownAvailability(10, 10),
			Quota{Exists: true, MaxPerUser: 4, Confirmed: 1, Pending: 1},
			StatePendingWarning,
		},
		{
			"sold out",
			KnownAvailability(10, 10),
			Quota{Exists: true, MaxPerUser: 4},
			StateSoldOut,
		},
		{
			"no quota record, stock left",
			KnownAvailability(10, 3),
			Quota{},
			StateAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GateState(tt.avail, tt.quota))
		})
	}
}

func TestSelectable(t *testing.T) {
	assert.True(t, StateAvailable.Selectable())
	assert.True(t, StatePendingWarning.Selectable())
	assert.False(t, StateMaxed.Selectable())
	assert.False(t, StateSoldOut.Selectable())
}

func TestMaxQuantity(t *testing.T) {
	// stock is the binding constraint
	assert.Equal(t, 2, MaxQuantity(
		KnownAvailability(10, 8),
		Quota{Exists: true, MaxPerUser: 5},
	))
	// quota is the binding constraint
	assert.Equal(t, 3, MaxQuantity(
		KnownAvailability(10, 0),
		Quota{Exists: true, MaxPerUser: 4, Confirmed: 1},
	))
	// no quota record falls back to stock alone
	assert.Equal(t, 10, MaxQuantity(KnownAvailability(10, 0), Quota{}))
}

func TestClampQuantity(t *testing.T) {
	avail := KnownAvailability(10, 8)
	quota := Quota{Exists: true, MaxPerUser: 5}

	got, clamped := ClampQuantity(4, avail, quota)
	assert.Equal(t, 2, got)
	assert.True(t, clamped)

	got, clamped = ClampQuantity(2, avail, quota)
	assert.Equal(t, 2, got)
	assert.False(t, clamped)

	got, clamped = ClampQuantity(1, avail, quota)
	assert.Equal(t, 1, got)
	assert.False(t, clamped)
}

func TestDistinctSchedules(t *testing.T) {
	assert.True(t, DistinctSchedules(nil))
	assert.True(t, DistinctSchedules([]int64{1}))
	assert.True(t, DistinctSchedules([]int64{1, 2, 3}))
	// repeating a schedule would stack holds past the per-user cap
	assert.False(t, DistinctSchedules([]int64{1, 2, 1}))
	assert.False(t, DistinctSchedules([]int64{7, 7}))
}
