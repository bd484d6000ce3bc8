package features

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/models"
)

// Builder converts raw provider statistics into normalized feature vectors
// using an explicit versioned schema. A pure function over its inputs; safe
// for concurrent use.
type Builder struct {
	schema   Schema
	minGames int
	logger   *logrus.Logger
}

// NewBuilder creates a builder. minGames is the minimum history required
// before a vector is considered meaningful.
func NewBuilder(schema Schema, minGames int, logger *logrus.Logger) *Builder {
	return &Builder{
		schema:   schema,
		minGames: minGames,
		logger:   logger,
	}
}

// Dim returns the dimensionality contract of the produced vectors.
func (b *Builder) Dim() int { return b.schema.Dim() }

// SchemaVersion returns the layout version in use.
func (b *Builder) SchemaVersion() int { return b.schema.Version }

// Build produces the fixed-order normalized vector for one team's stats.
// Missing fields take the schema default; every component is clamped to [0,1].
// Returns models.ErrInsufficientHistory when the team has too few games.
func (b *Builder) Build(stats models.RawStats, gamesPlayed int) (models.FeatureVector, error) {
	if gamesPlayed < b.minGames {
		return nil, fmt.Errorf("%w: team has %d games, need at least %d", models.ErrInsufficientHistory, gamesPlayed, b.minGames)
	}
	if stats == nil {
		return nil, fmt.Errorf("%w: no raw stats supplied", models.ErrInsufficientHistory)
	}

	vec := make(models.FeatureVector, 0, b.schema.Dim())
	missing := 0
	for _, f := range b.schema.Fields {
		value, ok := stats[f.Key]
		if !ok {
			value = f.Default
			missing++
		}
		vec = append(vec, value/f.Scale)
	}

	if missing > 0 {
		b.logger.WithFields(logrus.Fields{
			"missing_fields": missing,
			"schema_version": b.schema.Version,
		}).Debug("Raw stats missing fields, used schema defaults")
	}

	return vec.Clamped(), nil
}
