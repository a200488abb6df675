// internal/pipeline/reconcile.go
package pipeline

import (
	"github-rank-tracker/internal/model"
)

// Reconcile compares a fresh ranking snapshot against the persisted rank
// states and produces one insert or update directive per snapshot entry.
//
// position_prev only moves when the rank actually changed between cycles: it
// takes the persisted position_cur, so it always holds the last rank the
// repository held before its current one. On an unchanged rank the persisted
// position_prev is carried forward as is. First sightings insert with a nil
// position_prev. Repositories persisted but absent from the snapshot produce
// no directive; their rows are left untouched.
func Reconcile(snapshot []model.SnapshotEntry, states map[string]model.RankState) []model.RankingDirective {
	directives := make([]model.RankingDirective, 0, len(snapshot))

	for _, entry := range snapshot {
		row := model.Repository{
			FullName:    entry.FullName,
			Owner:       entry.Owner,
			PositionCur: entry.Position,
			Stars:       entry.Stars,
			Watchers:    entry.Watchers,
			Forks:       entry.Forks,
			OpenIssues:  entry.OpenIssues,
			Language:    entry.Language,
		}

		state, known := states[entry.FullName]
		if !known {
			directives = append(directives, model.RankingDirective{
				Kind: model.DirectiveInsert,
				Row:  row,
			})
			continue
		}

		if state.PositionCur != entry.Position {
			prev := state.PositionCur
			row.PositionPrev = &prev
		} else {
			row.PositionPrev = state.PositionPrev
		}

		directives = append(directives, model.RankingDirective{
			Kind: model.DirectiveUpdate,
			Row:  row,
		})
	}

	return directives
}
