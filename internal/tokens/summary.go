package tokens

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dailyink/dailyink/internal/writemode"
)

// Granularity selects the reporting bucket for history summaries.
type Granularity string

const (
	ByDay   Granularity = "day"
	ByMonth Granularity = "month"
)

func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(strings.ToLower(s)) {
	case ByDay, "":
		return ByDay, nil
	case ByMonth:
		return ByMonth, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// TokenTotals is the signed sum of token-pool changes per mode.
type TokenTotals struct {
	Mode300  int `json:"mode_300"`
	Mode1000 int `json:"mode_1000"`
}

func (t *TokenTotals) add(mode writemode.Mode, amount int) {
	switch mode {
	case writemode.Short:
		t.Mode300 += amount
	case writemode.Long:
		t.Mode1000 += amount
	}
}

type DailySummary struct {
	Date        string         `json:"date"`
	TotalTokens TokenTotals    `json:"total_tokens"`
	GoldenKeys  int            `json:"golden_keys"`
	Changes     []HistoryEvent `json:"changes"`
}

type MonthlySummary struct {
	Month       string      `json:"month"`
	TotalTokens TokenTotals `json:"total_tokens"`
	GoldenKeys  int         `json:"golden_keys"`
}

// Report is the result of SummarizeHistory. Exactly one of Days or Months is set.
type Report struct {
	Granularity Granularity      `json:"granularity"`
	Days        []DailySummary   `json:"days,omitempty"`
	Months      []MonthlySummary `json:"months,omitempty"`
}

// Summarize folds events into per-day or per-month buckets in loc. Every
// observed bucket is emitted in chronological order, and the output does not
// depend on the order events arrive in.
func Summarize(events []HistoryEvent, g Granularity, loc *time.Location) Report {
	if loc == nil {
		loc = time.UTC
	}
	sorted := sortedEvents(events)

	if g == ByMonth {
		return Report{Granularity: ByMonth, Months: byMonth(sorted, loc)}
	}
	return Report{Granularity: ByDay, Days: byDay(sorted, loc)}
}

func byDay(events []HistoryEvent, loc *time.Location) []DailySummary {
	var out []DailySummary
	index := make(map[string]int)
	for _, e := range events {
		key := e.Timestamp.In(loc).Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, DailySummary{Date: key, Changes: []HistoryEvent{}})
		}
		s := &out[i]
		if e.Kind.affectsKeys() {
			s.GoldenKeys += e.Amount
		} else {
			s.TotalTokens.add(e.Mode, e.Amount)
		}
		s.Changes = append(s.Changes, e)
	}
	return out
}

func byMonth(events []HistoryEvent, loc *time.Location) []MonthlySummary {
	var out []MonthlySummary
	index := make(map[string]int)
	for _, e := range events {
		key := e.Timestamp.In(loc).Format("2006-01")
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, MonthlySummary{Month: key})
		}
		if e.Kind.affectsKeys() {
			out[i].GoldenKeys += e.Amount
		} else {
			out[i].TotalTokens.add(e.Mode, e.Amount)
		}
	}
	return out
}

// sortedEvents orders a copy by timestamp, breaking ties on id so equal
// event sets always produce the same change lists.
func sortedEvents(events []HistoryEvent) []HistoryEvent {
	sorted := slices.Clone(events)
	slices.SortFunc(sorted, func(a, b HistoryEvent) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return sorted
}
