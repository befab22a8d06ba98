package persona

import (
	"errors"
	"fmt"
	"strings"
)

// Persona is a durable record of one battle rapper with its win/loss
// counters. TotalDebates always equals Wins + Losses.
type Persona struct {
	Name         string `json:"name"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	TotalDebates int    `json:"total_debates"`
}

// WinPct returns the win percentage, 0 for personas with no debates.
func (p Persona) WinPct() float64 {
	if p.TotalDebates == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.TotalDebates) * 100
}

// ErrNotFound is returned when a persona does not exist in the store.
var ErrNotFound = errors.New("persona not found")

// ErrInvalidName is returned for empty names or names containing
// characters unsafe for the backing store's key space.
var ErrInvalidName = errors.New("invalid persona name")

// unsafeNameChars would collide with key separators in tabular backends.
const unsafeNameChars = `/\#?`

// ValidateName rejects empty names and names carrying separator
// characters the backing store cannot key on.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.ContainsAny(name, unsafeNameChars) {
		return fmt.Errorf("%w: %q contains one of %q", ErrInvalidName, name, unsafeNameChars)
	}
	return nil
}

// LeaderboardEntry is one row of the public leaderboard.
type LeaderboardEntry struct {
	Name   string  `json:"name"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	Total  int     `json:"total"`
	WinPct float64 `json:"win_pct"`
}
