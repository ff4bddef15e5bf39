// Package rotation suggests the next crop for a field from a static table of
// rotation rules and the field's recent history. Everything here is pure.
package rotation

import (
	"fmt"
	"slices"
	"sort"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

type Recommendation struct {
	Crop     string   `json:"crop"`
	Priority Priority `json:"priority"`
	Reason   string   `json:"reason"`
}

const (
	recentWindow = 5
	minResults   = 5
	maxResults   = 10
)

// Recommend ranks candidate crops to follow previousCrop. history holds the
// crops of past entries, newest first. An empty or unknown previous crop
// gets the general list.
func Recommend(previousCrop string, history []string) []Recommendation {
	rule, ok := byCrop[previousCrop]
	if previousCrop == "" || !ok {
		return slices.Clone(general)
	}

	recent := recentCrops(history)
	var out []Recommendation

	for _, crop := range rule.Recommended {
		if !slices.Contains(recent, crop) {
			out = append(out, Recommendation{Crop: crop, Priority: PriorityHigh, Reason: rule.Reason})
		}
	}

	for _, crop := range rule.Recommended {
		if idx := slices.Index(recent, crop); idx > 1 {
			out = append(out, Recommendation{
				Crop:     crop,
				Priority: PriorityMedium,
				Reason:   fmt.Sprintf("Good rotation choice, but was grown %d seasons ago", idx+1),
			})
		}
	}

	if len(out) < minResults {
		for _, r := range rules {
			if slices.Contains(rule.Avoid, r.Crop) || slices.Contains(recent, r.Crop) || listed(out, r.Crop) {
				continue
			}
			out = append(out, Recommendation{Crop: r.Crop, Priority: PriorityLow, Reason: "Compatible with crop rotation"})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.rank() < out[j].Priority.rank()
	})
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

// recentCrops takes the newest entries and drops repeats, keeping the
// position of each crop's most recent appearance.
func recentCrops(history []string) []string {
	window := history
	if len(window) > recentWindow {
		window = window[:recentWindow]
	}
	out := make([]string, 0, len(window))
	for _, crop := range window {
		if !slices.Contains(out, crop) {
			out = append(out, crop)
		}
	}
	return out
}

func listed(recs []Recommendation, crop string) bool {
	for _, r := range recs {
		if r.Crop == crop {
			return true
		}
	}
	return false
}
