package repository

import (
	"cmp"
	"slices"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/models"
)

// HistoryLength caps the number of recent races kept in a record.
const HistoryLength = 10

type runningAverage struct {
	count int
	sum   int
}

func (r *runningAverage) add(v int) {
	r.count++
	r.sum += v
}

func (r runningAverage) mean() float64 {
	if r.count == 0 {
		return 0
	}
	return float64(r.sum) / float64(r.count)
}

// AggregateEntries builds the season record of one competitor from its race
// entries. Splits are keyed by the entry track type and, when categories maps
// that type, by its category as well. Only classified entries count as races.
func AggregateEntries(competitorID string, season int, entries []models.RaceEntry, categories map[string]string) *models.CompetitorStatsRecord {
	record := &models.CompetitorStatsRecord{
		CompetitorID: competitorID,
		Season:       season,
		Splits:       make(map[string]models.SplitStats),
		History:      []models.RaceFinish{},
	}

	var finish, start runningAverage
	splitFinish := make(map[string]*runningAverage)
	splitStart := make(map[string]*runningAverage)

	for _, e := range entries {
		if e.Finish == nil {
			continue
		}
		finish.add(*e.Finish)
		if record.Stats.BestFinish == 0 || *e.Finish < record.Stats.BestFinish {
			record.Stats.BestFinish = *e.Finish
		}
		if e.Start != nil {
			start.add(*e.Start)
		}

		for _, key := range splitKeys(e.TrackType, categories) {
			if splitFinish[key] == nil {
				splitFinish[key] = &runningAverage{}
				splitStart[key] = &runningAverage{}
			}
			splitFinish[key].add(*e.Finish)
			if e.Start != nil {
				splitStart[key].add(*e.Start)
			}
		}
	}

	record.Stats.Races = finish.count
	record.Stats.AvgFinish = finish.mean()
	record.Stats.AvgStart = start.mean()
	for key, f := range splitFinish {
		record.Splits[key] = models.SplitStats{
			Races:     f.count,
			AvgFinish: f.mean(),
			AvgStart:  splitStart[key].mean(),
		}
	}

	recent := slices.Clone(entries)
	slices.SortStableFunc(recent, func(a, b models.RaceEntry) int {
		return cmp.Compare(b.RaceNumber, a.RaceNumber)
	})
	for _, e := range recent[:min(len(recent), HistoryLength)] {
		record.History = append(record.History, models.RaceFinish{
			RaceNumber: e.RaceNumber,
			TrackType:  e.TrackType,
			Start:      e.Start,
			Finish:     e.Finish,
		})
	}

	return record
}

func splitKeys(trackType string, categories map[string]string) []string {
	if trackType == "" {
		return nil
	}
	keys := []string{trackType}
	if category, ok := categories[trackType]; ok && category != trackType {
		keys = append(keys, category)
	}
	return keys
}
