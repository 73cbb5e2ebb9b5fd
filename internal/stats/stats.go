// Package stats computes the read-side aggregates of the penalty fund:
// range summaries, player and offense leaderboards and the daily series
// behind the charts. All functions are pure; they never touch the store.
package stats

import (
	"sort"

	"strafenkasse/internal/core"
)

type (
	// Summary holds the headline numbers for a set of entries.
	Summary struct {
		Count   int
		Total   core.Money
		Average core.Money // per entry, half-up on cents; zero when Count is zero
		Max     core.Money // largest single entry total
	}

	// RankingRow is one group in a leaderboard, either a player or a
	// penalty type.
	RankingRow struct {
		ID    int64
		Name  string
		Count int
		Total core.Money
	}

	// DailyPoint is one calendar day that has at least one entry. Days
	// without entries do not appear in a series.
	DailyPoint struct {
		Date       core.Date
		Daily      core.Money
		Cumulative core.Money
	}

	// Overview bundles everything the statistics page renders for one
	// date range.
	Overview struct {
		Summary Summary
		Players []RankingRow
		Types   []RankingRow
		Series  []DailyPoint
	}
)

func filter(entries []core.Entry, r core.DateRange) []core.Entry {
	if r.IsOpen() {
		return entries
	}
	out := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if r.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// Summarize computes the headline numbers over all entries inside the range.
func Summarize(entries []core.Entry, r core.DateRange) Summary {
	var s Summary
	for _, e := range filter(entries, r) {
		total := e.Total()
		s.Count++
		s.Total.Cents += total.Cents
		if total.Cents > s.Max.Cents {
			s.Max.Cents = total.Cents
		}
	}
	if s.Count > 0 {
		n := int64(s.Count)
		s.Average.Cents = (s.Total.Cents + n/2) / n
	}
	return s
}

// RankByPlayer groups entries by player, ordered by total descending.
// Players tied on total keep their creation order via the ID tie-break.
func RankByPlayer(entries []core.Entry, r core.DateRange) []RankingRow {
	return rank(filter(entries, r), func(e core.Entry) (int64, string) {
		return e.PlayerID, e.PlayerName
	})
}

// RankByType groups entries by penalty type, ordered like RankByPlayer.
func RankByType(entries []core.Entry, r core.DateRange) []RankingRow {
	return rank(filter(entries, r), func(e core.Entry) (int64, string) {
		return e.TypeID, e.TypeName
	})
}

func rank(entries []core.Entry, key func(core.Entry) (int64, string)) []RankingRow {
	idx := make(map[int64]int, len(entries))
	rows := make([]RankingRow, 0, len(entries))
	for _, e := range entries {
		id, name := key(e)
		i, ok := idx[id]
		if !ok {
			i = len(rows)
			idx[id] = i
			rows = append(rows, RankingRow{ID: id, Name: name})
		}
		rows[i].Count++
		rows[i].Total.Cents += e.Total().Cents
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total.Cents != rows[j].Total.Cents {
			return rows[i].Total.Cents > rows[j].Total.Cents
		}
		return rows[i].ID < rows[j].ID
	})
	return rows
}

// DailySeries sums entries per calendar day and carries a running total.
// The result is ordered by day ascending and skips days without entries.
func DailySeries(entries []core.Entry, r core.DateRange) []DailyPoint {
	daily := make(map[core.Date]int64)
	for _, e := range filter(entries, r) {
		daily[e.Date] += e.Total().Cents
	}
	if len(daily) == 0 {
		return nil
	}
	days := make([]core.Date, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j].Time)
	})
	series := make([]DailyPoint, 0, len(days))
	var running int64
	for _, d := range days {
		running += daily[d]
		series = append(series, DailyPoint{
			Date:       d,
			Daily:      core.Money{Cents: daily[d]},
			Cumulative: core.Money{Cents: running},
		})
	}
	return series
}

// BuildOverview runs all aggregations over one filtered view of the entries.
func BuildOverview(entries []core.Entry, r core.DateRange) Overview {
	in := filter(entries, r)
	return Overview{
		Summary: Summarize(in, core.DateRange{}),
		Players: RankByPlayer(in, core.DateRange{}),
		Types:   RankByType(in, core.DateRange{}),
		Series:  DailySeries(in, core.DateRange{}),
	}
}
