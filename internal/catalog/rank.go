package catalog

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Rank orders models by relevance to query. Name prefix matches come first,
// then substring matches, then everything else. Within a group, closer edit
// distance to the query wins, and ties fall back to name order. An empty query
// sorts by name.
func Rank(query string, models []Model) []Model {
	out := append([]Model(nil), models...)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
		return out
	}

	type scored struct {
		m     Model
		group int
		dist  int
	}
	rows := make([]scored, len(out))
	for i, m := range out {
		name := strings.ToLower(m.Name)
		group := 2
		switch {
		case strings.HasPrefix(name, q):
			group = 0
		case strings.Contains(name, q), strings.Contains(strings.ToLower(m.PartNumber), q):
			group = 1
		}
		rows[i] = scored{m: m, group: group, dist: levenshtein.ComputeDistance(q, name)}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.group != b.group {
			return a.group < b.group
		}
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		return strings.ToLower(a.m.Name) < strings.ToLower(b.m.Name)
	})
	for i, r := range rows {
		out[i] = r.m
	}
	return out
}
