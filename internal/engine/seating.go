package engine

import (
	"cmp"
	"math"
	"slices"
	"time"
)

type OrderBy string

const (
	OrderSeat     OrderBy = "seat"
	OrderJoinedAt OrderBy = "joined_at"
)

// Seat is one joined member as read from table_members.
type Seat struct {
	UserID   string
	Seat     *int
	JoinedAt *time.Time
}

// OrderPlayers returns the clockwise player order for a table.
//
// Seat numbers are used once at least MinPlayers members have one; otherwise
// members are ordered by join time. Members missing the sort key go last, ties
// keep their read order, and a user listed twice keeps the first position.
func OrderPlayers(members []Seat) ([]string, OrderBy) {
	seated := 0
	for _, m := range members {
		if m.Seat != nil {
			seated++
		}
	}
	by := OrderJoinedAt
	if seated >= MinPlayers {
		by = OrderSeat
	}

	ordered := slices.Clone(members)
	slices.SortStableFunc(ordered, func(a, b Seat) int {
		if by == OrderSeat {
			return cmp.Compare(seatKey(a), seatKey(b))
		}
		return cmp.Compare(joinedKey(a), joinedKey(b))
	})

	players := make([]string, 0, len(ordered))
	seen := make(map[string]bool, len(ordered))
	for _, m := range ordered {
		if seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true
		players = append(players, m.UserID)
	}
	return players, by
}

func seatKey(s Seat) int {
	if s.Seat == nil {
		return math.MaxInt
	}
	return *s.Seat
}

func joinedKey(s Seat) int64 {
	if s.JoinedAt == nil {
		return math.MaxInt64
	}
	return s.JoinedAt.UnixNano()
}
