package simulation

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/models"
)

type finishTally struct {
	runs  int
	sum   int64
	wins  int
	top5  int
	top10 int
	best  int
	worst int
}

func (f *finishTally) add(finish int) {
	if f.runs == 0 || finish < f.best {
		f.best = finish
	}
	if finish > f.worst {
		f.worst = finish
	}
	f.runs++
	f.sum += int64(finish)
	if finish == 1 {
		f.wins++
	}
	if finish <= 5 {
		f.top5++
	}
	if finish <= 10 {
		f.top10++
	}
}

func (f *finishTally) merge(other finishTally) {
	if other.runs == 0 {
		return
	}
	if f.runs == 0 || other.best < f.best {
		f.best = other.best
	}
	if other.worst > f.worst {
		f.worst = other.worst
	}
	f.runs += other.runs
	f.sum += other.sum
	f.wins += other.wins
	f.top5 += other.top5
	f.top10 += other.top10
}

// tally accumulates finishing positions for one worker. Merging tallies is an
// integer sum/min/max, so the merged result does not depend on merge order.
type tally struct {
	ids     []string
	index   map[string]int
	entries []finishTally
}

func newTally(ids []string) *tally {
	t := &tally{
		ids:     ids,
		index:   make(map[string]int, len(ids)),
		entries: make([]finishTally, len(ids)),
	}
	for i, id := range ids {
		t.index[id] = i
	}
	return t
}

func (t *tally) record(order []string) error {
	if len(order) != len(t.ids) {
		return fmt.Errorf("%w: finishing order has %d competitors, expected %d", models.ErrComputation, len(order), len(t.ids))
	}
	for pos, id := range order {
		i, ok := t.index[id]
		if !ok {
			return fmt.Errorf("%w: unknown competitor %q in finishing order", models.ErrComputation, id)
		}
		t.entries[i].add(pos + 1)
	}
	return nil
}

func (t *tally) merge(other *tally) {
	for i := range t.entries {
		t.entries[i].merge(other.entries[i])
	}
}

// results reduces the tally into per-competitor statistics sorted by win
// probability descending, ties broken by competitor ID ascending.
func (t *tally) results(numSimulations int) ([]models.AggregateResult, error) {
	results := make([]models.AggregateResult, 0, len(t.ids))
	n := float64(numSimulations)
	for i, id := range t.ids {
		e := t.entries[i]
		if e.runs != numSimulations {
			return nil, fmt.Errorf("%w: competitor %q recorded %d finishes over %d simulations", models.ErrComputation, id, e.runs, numSimulations)
		}
		results = append(results, models.AggregateResult{
			CompetitorID:     id,
			AvgFinish:        float64(e.sum) / n,
			WinProbability:   float64(e.wins) / n,
			Top5Probability:  float64(e.top5) / n,
			Top10Probability: float64(e.top10) / n,
			BestFinish:       e.best,
			WorstFinish:      e.worst,
		})
	}
	slices.SortFunc(results, func(a, b models.AggregateResult) int {
		if c := cmp.Compare(b.WinProbability, a.WinProbability); c != 0 {
			return c
		}
		return cmp.Compare(a.CompetitorID, b.CompetitorID)
	})
	return results, nil
}
