// Package stats derives per-mode writing statistics from a user's bounded
// submission history. Everything here is a pure function of its input.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/dailyink/dailyink/internal/writemode"
)

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

const (
	trendWindow      = 5
	maxPreferred     = 5
	observationWeeks = 4
	wordsPerSentence = 20

	DefaultTrend     = 5.0
	DefaultCriterion = 5.0
)

// Thresholds are the score deltas, in points, that separate a trend or a
// strength/weakness from noise.
type Thresholds struct {
	Trend     float64
	Criterion float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Trend: DefaultTrend, Criterion: DefaultCriterion}
}

// Entry is the part of a history entry the aggregator reads.
type Entry struct {
	Score     *float64
	Criteria  map[string]float64
	Topic     string
	WordCount int
}

type WritingStyle struct {
	SentenceLength     float64 `json:"sentence_length"`
	ParagraphStructure string  `json:"paragraph_structure"`
	VocabularyLevel    string  `json:"vocabulary_level"`
	LogicalFlow        string  `json:"logical_flow"`
}

type Stats struct {
	AverageScore     float64       `json:"average_score"`
	ScoreTrend       Trend         `json:"score_trend"`
	StrengthAreas    []string      `json:"strength_areas"`
	WeaknessAreas    []string      `json:"weakness_areas"`
	WritingFrequency float64       `json:"writing_frequency"`
	PreferredTopics  []string      `json:"preferred_topics"`
	CommonMistakes   []string      `json:"common_mistakes"`
	LastUpdated      time.Time     `json:"last_updated"`
	WritingStyle     *WritingStyle `json:"writing_style,omitempty"`
}

// Empty is the stats value of a mode with no history.
func Empty(now time.Time) Stats {
	return Stats{
		ScoreTrend:      TrendStable,
		StrengthAreas:   []string{},
		WeaknessAreas:   []string{},
		PreferredTopics: []string{},
		CommonMistakes:  []string{},
		LastUpdated:     now,
	}
}

// commonMistakes is a fixed placeholder until mistakes are extracted from
// feedback text.
func commonMistakes() []string {
	return []string{"spelling", "spacing"}
}

// Compute recomputes the stats of one mode from its whole history. The
// result never contains NaN.
func Compute(history []Entry, mode writemode.Mode, now time.Time, th Thresholds) Stats {
	out := Empty(now)
	if len(history) == 0 {
		return out
	}

	scores := validScores(history)
	out.AverageScore = mean(scores)
	out.ScoreTrend = trend(scores, th.Trend)
	out.StrengthAreas, out.WeaknessAreas = criteriaAreas(history, th.Criterion)
	out.PreferredTopics = preferredTopics(history)
	out.CommonMistakes = commonMistakes()
	out.WritingFrequency = float64(len(history)) / observationWeeks

	if mode == writemode.Long {
		out.WritingStyle = writingStyle(history)
	}
	return out
}

func validNumber(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func validScores(history []Entry) []float64 {
	var scores []float64
	for _, e := range history {
		if e.Score != nil && validNumber(*e.Score) {
			scores = append(scores, *e.Score)
		}
	}
	return scores
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// trend compares the older and newer halves of the last trendWindow valid
// scores. With an odd count the middle score is in neither half: 80..100
// compares 97.5 against 82.5, not the means of three and two scores.
func trend(scores []float64, threshold float64) Trend {
	if len(scores) > trendWindow {
		scores = scores[len(scores)-trendWindow:]
	}
	n := len(scores)
	if n < 2 {
		return TrendStable
	}
	half := n / 2
	diff := mean(scores[n-half:]) - mean(scores[:half])
	switch {
	case diff > threshold:
		return TrendImproving
	case diff < -threshold:
		return TrendDeclining
	}
	return TrendStable
}

func criteriaAreas(history []Entry, threshold float64) (strengths, weaknesses []string) {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, e := range history {
		for name, v := range e.Criteria {
			if !validNumber(v) {
				continue
			}
			sums[name] += v
			counts[name]++
		}
	}

	strengths, weaknesses = []string{}, []string{}
	if len(counts) == 0 {
		return strengths, weaknesses
	}

	means := make(map[string]float64, len(counts))
	var total float64
	for name, c := range counts {
		means[name] = sums[name] / float64(c)
		total += means[name]
	}
	overall := total / float64(len(means))

	for name, m := range means {
		switch {
		case m > overall+threshold:
			strengths = append(strengths, name)
		case m < overall-threshold:
			weaknesses = append(weaknesses, name)
		}
	}
	sort.Strings(strengths)
	sort.Strings(weaknesses)
	return strengths, weaknesses
}

// preferredTopics ranks topics by frequency; equal counts keep first-seen order.
func preferredTopics(history []Entry) []string {
	counts := map[string]int{}
	var order []string
	for _, e := range history {
		if e.Topic == "" {
			continue
		}
		if counts[e.Topic] == 0 {
			order = append(order, e.Topic)
		}
		counts[e.Topic]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxPreferred {
		order = order[:maxPreferred]
	}
	if order == nil {
		return []string{}
	}
	return order
}

func writingStyle(history []Entry) *WritingStyle {
	var counts []float64
	for _, e := range history {
		if e.WordCount > 0 {
			counts = append(counts, float64(e.WordCount))
		}
	}
	return &WritingStyle{
		SentenceLength:     mean(counts) / wordsPerSentence,
		ParagraphStructure: "standard",
		VocabularyLevel:    "intermediate",
		LogicalFlow:        "coherent",
	}
}
