package http

import (
	"encoding/json"
	"html/template"

	"strafenkasse/internal/core"
	"strafenkasse/internal/stats"
)

// entryRow is one rendered penalty line.
type entryRow struct {
	ID       int64
	Date     string
	Player   string
	Type     string
	Quantity int
	Unit     string
	Total    string
	Notes    string
}

func entryRows(entries []core.Entry) []entryRow {
	rows := make([]entryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, entryRow{
			ID:       e.ID,
			Date:     formatDay(e.Date),
			Player:   e.PlayerName,
			Type:     e.TypeName,
			Quantity: e.Quantity,
			Unit:     formatMoney(e.UnitAmount),
			Total:    formatMoney(e.Total()),
			Notes:    e.Notes,
		})
	}
	return rows
}

// rankRow is one leaderboard line with its 1-based position.
type rankRow struct {
	Pos   int
	Name  string
	Count int
	Total string
}

func rankRows(rows []stats.RankingRow, limit int) []rankRow {
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]rankRow, 0, len(rows))
	for i, r := range rows {
		out = append(out, rankRow{Pos: i + 1, Name: r.Name, Count: r.Count, Total: formatMoney(r.Total)})
	}
	return out
}

// chartPoint is one day in an embedded chart series.
type chartPoint struct {
	Date       string  `json:"date"`
	Daily      float64 `json:"daily"`
	Cumulative float64 `json:"cumulative"`
}

// chartJSON marshals a series for the JSON data block inside a page. The
// frontend reads it with JSON.parse, so no user input may end up in here.
func chartJSON(series []stats.DailyPoint) template.JS {
	points := make([]chartPoint, 0, len(series))
	for _, p := range series {
		points = append(points, chartPoint{
			Date:       p.Date.String(),
			Daily:      p.Daily.Euros(),
			Cumulative: p.Cumulative.Euros(),
		})
	}
	b, err := json.Marshal(points)
	if err != nil {
		return template.JS("[]")
	}
	return template.JS(b)
}
