package engine

import (
	"crypto/rand"
	"math/big"
	"slices"
)

// Positions names the players holding each role for a session or a hand.
// Turn is only set for hands.
type Positions struct {
	Dealer     string `json:"dealer_user_id"`
	SmallBlind string `json:"sb_user_id"`
	BigBlind   string `json:"bb_user_id"`
	Turn       string `json:"turn_user_id,omitempty"`
}

// Intn returns a uniform value in [0, n).
type Intn func(n int) (int, error)

func CryptoIntn(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

func nextIndex(i, n int) int {
	return (i + 1) % n
}

// PickSessionRoles draws the opening dealer and seats the blinds clockwise.
func PickSessionRoles(players []string, intn Intn) (Positions, error) {
	n := len(players)
	if n < MinPlayers {
		return Positions{}, ErrNotEnoughPlayers
	}
	dealer, err := intn(n)
	if err != nil {
		return Positions{}, err
	}
	sb := nextIndex(dealer, n)
	bb := nextIndex(sb, n)
	return Positions{
		Dealer:     players[dealer],
		SmallBlind: players[sb],
		BigBlind:   players[bb],
	}, nil
}

// RotateHand moves the button one seat past prevDealer. If prevDealer has left
// the table the button restarts at the first player in order. Preflop action
// opens on the player after the big blind.
func RotateHand(players []string, prevDealer string) (Positions, error) {
	n := len(players)
	if n < MinPlayers {
		return Positions{}, ErrNotEnoughPlayers
	}
	dealer := slices.Index(players, prevDealer)
	if dealer == -1 {
		dealer = 0
	} else {
		dealer = nextIndex(dealer, n)
	}
	sb := nextIndex(dealer, n)
	bb := nextIndex(sb, n)
	return Positions{
		Dealer:     players[dealer],
		SmallBlind: players[sb],
		BigBlind:   players[bb],
		Turn:       players[nextIndex(bb, n)],
	}, nil
}
