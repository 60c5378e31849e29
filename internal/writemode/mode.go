// Package writemode defines the two writing formats and their per-mode limits.
package writemode

import (
	"errors"
	"fmt"
	"strings"
)

// Mode identifies a writing format. Each mode has its own token pool and
// history cap.
type Mode string

const (
	Short Mode = "mode_300"
	Long  Mode = "mode_1000"
)

// ErrUnknownMode is returned for any input that does not name a mode.
var ErrUnknownMode = errors.New("unknown writing mode")

// All lists the modes in display order.
var All = []Mode{Short, Long}

// Parse accepts the canonical names plus the "short"/"long" and "300"/"1000" aliases.
func Parse(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mode_300", "300", "short":
		return Short, nil
	case "mode_1000", "1000", "long":
		return Long, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m Mode) Valid() bool {
	return m == Short || m == Long
}

// HistoryCap is the number of history entries kept per profile.
func (m Mode) HistoryCap() int {
	if m == Long {
		return 20
	}
	return 10
}

// CharLimit is the maximum submission length in characters.
func (m Mode) CharLimit() int {
	if m == Long {
		return 1000
	}
	return 300
}

func (m Mode) String() string {
	return string(m)
}
