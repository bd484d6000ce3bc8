// Package features converts loosely-typed provider statistics into the
// fixed-order normalized vectors the encoder consumes.
package features

import "fmt"

// Field is one named slot in the feature layout: where the value comes from,
// what to substitute when missing, and the scale that maps it into [0,1].
type Field struct {
	Key     string
	Default float64
	Scale   float64
}

// Schema is an explicit, versioned ordered field list. The vector layout is
// part of the persistence contract: a trained encoder is only valid for the
// schema version it was trained against.
type Schema struct {
	Version int
	Fields  []Field
}

// Dim returns the vector length produced by this schema.
func (s Schema) Dim() int { return len(s.Fields) }

// statSpec names one box-score signal and its normalization scale.
type statSpec struct {
	name  string
	def   float64
	scale float64
}

// baseStats is the per-window stat list. Percentages carry scale 1; volume
// stats are scaled by generous per-game ceilings.
var baseStats = []statSpec{
	{"points", 70, 140},
	{"points_allowed", 70, 140},
	{"field_goal_pct", 0.45, 1},
	{"three_point_pct", 0.35, 1},
	{"free_throw_pct", 0.72, 1},
	{"effective_fg_pct", 0.5, 1},
	{"true_shooting_pct", 0.54, 1},
	{"three_point_attempt_rate", 0.35, 1},
	{"free_throw_rate", 0.25, 1},
	{"offensive_rebounds", 10, 25},
	{"defensive_rebounds", 25, 50},
	{"offensive_rebound_rate", 0.28, 1},
	{"assists", 14, 35},
	{"steals", 7, 18},
	{"blocks", 4, 12},
	{"turnovers", 13, 30},
	{"turnover_rate", 0.18, 1},
	{"personal_fouls", 17, 35},
	{"pace", 70, 110},
	{"offensive_rating", 105, 140},
	{"defensive_rating", 105, 140},
	{"opponent_fg_pct", 0.45, 1},
	{"win_pct", 0.5, 1},
	{"average_margin", 0.5, 1}, // pre-shifted by the provider to [0,1] around 0.5
	{"home_win_pct", 0.5, 1},
	{"away_win_pct", 0.5, 1},
	{"current_streak", 0.5, 1},
	{"rest_days", 2, 7},
}

// windows are the rolling aggregation spans the provider reports per stat.
var windows = []string{"season", "last10", "last5"}

// SchemaV1 is the current 84-component layout: 28 stats across 3 rolling
// windows, keyed "<window>_<stat>".
func SchemaV1() Schema {
	fields := make([]Field, 0, len(baseStats)*len(windows))
	for _, w := range windows {
		for _, s := range baseStats {
			fields = append(fields, Field{
				Key:     fmt.Sprintf("%s_%s", w, s.name),
				Default: s.def,
				Scale:   nonZero(s.scale),
			})
		}
	}
	return Schema{Version: 1, Fields: fields}
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
