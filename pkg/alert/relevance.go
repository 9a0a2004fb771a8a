package alert

import (
	"sort"
	"strings"

	"waira/entities"
)

const (
	baseRelevance = 50
	// PersonalThreshold is the relevance above which an alert counts as
	// personal and a web alert is worth keeping.
	PersonalThreshold = 60

	nationwide = "Nacional"
	allCrops   = "todos"
)

var severityBonus = map[entities.AlertSeverity]int{
	entities.SeverityCritical: 20,
	entities.SeverityHigh:     15,
	entities.SeverityMedium:   10,
	entities.SeverityLow:      5,
	entities.SeverityInfo:     0,
}

// Match is the part of a farmer profile alerts are scored against.
type Match struct {
	Location string
	Crops    []string
}

// Configured reports whether there is enough profile to personalize.
func (m Match) Configured() bool { return m.Location != "" && len(m.Crops) > 0 }

func MatchFromProfile(p *entities.Profile) Match {
	if p == nil {
		return Match{}
	}
	return Match{Location: strings.TrimSpace(p.Region()), Crops: p.MainProducts}
}

// Relevance scores a against m on a 0-100 scale. Without a configured
// profile every alert scores the base value.
func Relevance(a entities.Alert, m Match) int {
	if !m.Configured() {
		return baseRelevance
	}
	r := baseRelevance
	if a.Location == nationwide || strings.Contains(strings.ToLower(a.Location), strings.ToLower(m.Location)) {
		r += 30
	}
	if cropsMatch(a.AffectedCrops, m.Crops) {
		r += 25
	}
	r += severityBonus[a.Severity]
	return min(100, r)
}

func cropsMatch(affected, mine []string) bool {
	set := make(map[string]bool, len(affected))
	for _, c := range affected {
		set[strings.ToLower(c)] = true
	}
	if set[allCrops] {
		return true
	}
	for _, c := range mine {
		if set[strings.ToLower(c)] {
			return true
		}
	}
	return false
}

// Filter mirrors the alert page controls. Empty or "todas" values match all.
type Filter struct {
	// Tab is "todas", "personalizadas", "web" or a category.
	Tab      string
	Severity string
	Location string
	Search   string
}

func isAll(s string) bool { return s == "" || s == "todas" }

func (f Filter) Matches(a entities.Alert) bool {
	switch {
	case isAll(f.Tab):
	case f.Tab == "personalizadas":
		if a.Relevance <= PersonalThreshold {
			return false
		}
	case f.Tab == "web":
		if !a.FromWeb {
			return false
		}
	default:
		if a.Category != f.Tab {
			return false
		}
	}
	if !isAll(f.Severity) && string(a.Severity) != f.Severity {
		return false
	}
	if !isAll(f.Location) && !strings.Contains(strings.ToLower(a.Location), strings.ToLower(f.Location)) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(a.Title), q) && !strings.Contains(strings.ToLower(a.Description), q) {
			return false
		}
	}
	return true
}

// Rank scores every alert, keeps those f matches and sorts by relevance,
// newest first on ties.
func Rank(alerts []entities.Alert, m Match, f Filter) []entities.Alert {
	out := make([]entities.Alert, 0, len(alerts))
	for _, a := range alerts {
		a.Relevance = Relevance(a, m)
		if f.Matches(a) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Relevance != out[j].Relevance {
			return out[i].Relevance > out[j].Relevance
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
