package service

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/dossier/internal/api"
)

// SortCases orders the dashboard list: pinned cases first, then by
// descending update time. Ties keep name order so the list is stable.
func SortCases(cases []api.Case) {
	sort.SliceStable(cases, func(i, j int) bool {
		a, b := cases[i], cases[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.Name < b.Name
	})
}

// FilterCases matches query against case names: exact substring hits rank
// ahead of fuzzy hits, fuzzy hits are ranked by edit distance. An empty
// query returns the input unchanged.
func FilterCases(cases []api.Case, query string) []api.Case {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return cases
	}

	type ranked struct {
		c    api.Case
		dist int
	}
	var subs []api.Case
	var fuzzy []ranked
	for _, c := range cases {
		name := strings.ToLower(c.Name)
		if strings.Contains(name, query) {
			subs = append(subs, c)
			continue
		}
		dist := levenshtein.ComputeDistance(name, query)
		// tolerate roughly a third of the name being wrong
		if dist <= max(2, len(name)/3) {
			fuzzy = append(fuzzy, ranked{c: c, dist: dist})
		}
	}
	sort.SliceStable(fuzzy, func(i, j int) bool { return fuzzy[i].dist < fuzzy[j].dist })

	out := make([]api.Case, 0, len(subs)+len(fuzzy))
	out = append(out, subs...)
	for _, r := range fuzzy {
		out = append(out, r.c)
	}
	return out
}

// legacy French status values still present on older cases
var statusAliases = map[string]string{
	"en_attente": api.StatusPending,
	"en_cours":   api.StatusAnalyzing,
	"analyse":    api.StatusAnalyzing,
	"termine":    api.StatusReady,
	"terminé":    api.StatusReady,
	"pret":       api.StatusReady,
	"prêt":       api.StatusReady,
	"echec":      api.StatusFailed,
	"échec":      api.StatusFailed,
	"erreur":     api.StatusFailed,
	"complete":   api.StatusReady,
	"completed":  api.StatusReady,
	"error":      api.StatusFailed,
	"processing": api.StatusAnalyzing,
}

// NormalizeStatus folds the backend's multi-valued legacy status enum into
// the four canonical values. Unknown values pass through unchanged.
func NormalizeStatus(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case api.StatusPending, api.StatusAnalyzing, api.StatusReady, api.StatusFailed:
		return key
	}
	if canon, ok := statusAliases[key]; ok {
		return canon
	}
	return s
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
