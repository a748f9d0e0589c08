// internal/app/scoring/match.go

// Package scoring turns vision labels into points: the pure matching
// rule lives in match.go, the storage side (atomic score increments
// coupled with completion marking) in reconciler.go.
package scoring

import (
	"github.com/dalemusser/waffle/pantry/text"

	"github.com/trazilica/server/internal/domain/models"
)

// SelectMatch picks which outstanding task, if any, the labels
// satisfy. Comparison is case-insensitive on the folded forms. When
// several outstanding tasks appear among the labels, catalog order
// decides: the earliest-registered task wins, regardless of label
// ranking or confidence. Returns the matched entry and true, or a zero
// entry and false.
func SelectMatch(outstanding []models.TaskEntry, labels []string) (models.TaskEntry, bool) {
	if len(outstanding) == 0 || len(labels) == 0 {
		return models.TaskEntry{}, false
	}

	labelSet := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		labelSet[text.Fold(l)] = struct{}{}
	}

	for _, task := range outstanding {
		if _, ok := labelSet[task.NameCI]; ok {
			return task, true
		}
	}
	return models.TaskEntry{}, false
}

// Outstanding filters the catalog down to the tasks not in the
// completed set, preserving catalog order.
func Outstanding(catalog []models.TaskEntry, completed map[string]struct{}) []models.TaskEntry {
	out := make([]models.TaskEntry, 0, len(catalog))
	for _, task := range catalog {
		if _, done := completed[task.NameCI]; !done {
			out = append(out, task)
		}
	}
	return out
}
