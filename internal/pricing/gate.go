package pricing

// Availability is the remaining-stock view of a ticket type. Known is false
// when the live figures could not be fetched and the caller fell back to the
// static total; the two cases must stay distinguishable so "confirmed
// available" is never silently equated with "assumed available".
type Availability struct {
	Known         bool
	TotalQuantity int
	Sold          int
}

// KnownAvailability builds an availability from live figures.
func KnownAvailability(total, sold int) Availability {
	return Availability{Known: true, TotalQuantity: total, Sold: sold}
}

// AssumedAvailability builds the fail-open fallback: the static total treated
// as fully unsold.
func AssumedAvailability(total int) Availability {
	return Availability{Known: false, TotalQuantity: total}
}

// Remaining returns unsold stock, never negative.
func (a Availability) Remaining() int {
	remaining := a.TotalQuantity - a.Sold
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SelectionState classifies whether a ticket type can currently be selected.
type SelectionState string

const (
	// StateMaxed - the user already confirmed their full per-user quota.
	// Terminal regardless of remaining stock.
	StateMaxed SelectionState = "maxed"
	// StatePendingWarning - the user has an unpaid pending purchase for this
	// ticket type. Still selectable, but the caller should warn before
	// letting them continue.
	StatePendingWarning SelectionState = "pending-warning"
	// StateSoldOut - no stock remains.
	StateSoldOut SelectionState = "sold-out"
	// StateAvailable - selectable without caveats.
	StateAvailable SelectionState = "available"
)

// GateState evaluates the selection state machine for one ticket type.
// The checks run in fixed order: quota exhaustion wins over everything,
// a pending purchase warns before stock is even considered.
func GateState(avail Availability, quota Quota) SelectionState {
	if quota.Exists && quota.Confirmed >= quota.MaxPerUser {
		return StateMaxed
	}
	if quota.Exists && quota.Pending > 0 {
		return StatePendingWarning
	}
	if avail.Remaining() <= 0 {
		return StateSoldOut
	}
	return StateAvailable
}

// Selectable reports whether the state still allows picking the ticket type.
func (s SelectionState) Selectable() bool {
	return s == StateAvailable || s == StatePendingWarning
}

// DistinctSchedules reports whether every schedule appears at most once in
// a full-schedule selection. Repeating a schedule would stack holds past
// the per-user cap, since each line is gated independently.
func DistinctSchedules(scheduleIDs []int64) bool {
	seen := make(map[int64]struct{}, len(scheduleIDs))
	for _, id := range scheduleIDs {
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}

// MaxQuantity is the hard cap on a selection: whichever runs out first,
// overall stock or the user's own quota.
func MaxQuantity(avail Availability, quota Quota) int {
	max := avail.Remaining()
	if quota.Exists && quota.RemainingForUser() < max {
		max = quota.RemainingForUser()
	}
	return max
}

// ClampQuantity reduces a requested quantity to the cap. Requests above the
// cap are clamped, never rejected; the second return value tells the caller
// to surface a warning.
func ClampQuantity(requested int, avail Availability, quota Quota) (int, bool) {
	max := MaxQuantity(avail, quota)
	if requested > max {
		return max, true
	}
	return requested, false
}
