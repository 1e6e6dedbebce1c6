package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/dossier/internal/api"
)

func TestSortCasesPinnedFirstThenRecency(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	cases := []api.Case{
		{ID: "a", Name: "Alpha", UpdatedAt: base.Add(2 * time.Hour)},
		{ID: "b", Name: "Bravo", UpdatedAt: base.Add(3 * time.Hour)},
		{ID: "c", Name: "Charlie", Pinned: true, UpdatedAt: base},
		{ID: "d", Name: "Delta", Pinned: true, UpdatedAt: base.Add(time.Hour)},
	}
	SortCases(cases)

	var ids []string
	for _, c := range cases {
		ids = append(ids, c.ID)
	}
	require.Equal(t, []string{"d", "c", "b", "a"}, ids)
}

func TestSortCasesNameBreaksTies(t *testing.T) {
	t.Parallel()

	when := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	cases := []api.Case{
		{ID: "2", Name: "Zulu", UpdatedAt: when},
		{ID: "1", Name: "Alpha", UpdatedAt: when},
	}
	SortCases(cases)
	require.Equal(t, "Alpha", cases[0].Name)
}

func TestFilterCasesSubstringBeforeFuzzy(t *testing.T) {
	t.Parallel()

	cases := []api.Case{
		{ID: "1", Name: "Vente Dupont"},
		{ID: "2", Name: "Vante Dupond"}, // close misspelling
		{ID: "3", Name: "Succession Martin"},
	}

	got := FilterCases(cases, "vente dupont")
	require.Len(t, got, 2)
	require.Equal(t, "1", got[0].ID, "substring hit ranks first")
	require.Equal(t, "2", got[1].ID, "fuzzy hit follows")
}

func TestFilterCasesEmptyQueryPassesThrough(t *testing.T) {
	t.Parallel()

	cases := []api.Case{{ID: "1"}, {ID: "2"}}
	require.Equal(t, cases, FilterCases(cases, "   "))
}

func TestFilterCasesRejectsDistantNames(t *testing.T) {
	t.Parallel()

	cases := []api.Case{{ID: "1", Name: "Donation Bernard"}}
	require.Empty(t, FilterCases(cases, "xyzzyplugh"))
}

func TestNormalizeStatus(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"pending":    api.StatusPending,
		"en_attente": api.StatusPending,
		"en_cours":   api.StatusAnalyzing,
		"processing": api.StatusAnalyzing,
		"terminé":    api.StatusReady,
		"TERMINE":    api.StatusReady,
		"completed":  api.StatusReady,
		"échec":      api.StatusFailed,
		"error":      api.StatusFailed,
		" ready ":    api.StatusReady,
	}
	for in, want := range tests {
		require.Equal(t, want, NormalizeStatus(in), "input %q", in)
	}

	// unknown values pass through untouched
	require.Equal(t, "archived", NormalizeStatus("archived"))
}
