package engine

import (
	"log"
	"os"

	"github.com/latticerun/interference/pkg/scoring"
)

// Options configures an Engine at construction, mirroring
// pkg/memory/engine/options.go's Options/DefaultOptions/withDefaults
// pattern.
type Options struct {
	// Scoring configures the match threshold used to build the
	// engine's scoring.Calculator.
	Scoring scoring.Options
	// Similarity overrides the default nan_to_num(1-cosine) metric. A
	// nil Similarity defaults to vector.NanToNumSimilarity.
	Similarity scoring.SimilarityFunc
	// Logger receives non-fatal diagnostics (unknown transformer key,
	// evaluation failures). Processors themselves stay silent;
	// logging is a caller/facade responsibility only.
	Logger *log.Logger
}

// DefaultOptions returns the engine's default configuration: the
// default match threshold, the default similarity metric, and a
// logger writing to stderr.
func DefaultOptions() Options {
	return Options{
		Scoring: scoring.DefaultOptions(),
		Logger:  log.New(os.Stderr, "interference: ", log.LstdFlags),
	}
}

func (o Options) withDefaults() Options {
	if o.Scoring.ScoreToBeMatch == 0 {
		o.Scoring = scoring.DefaultOptions()
	}
	if o.Logger == nil {
		o.Logger = log.New(os.Stderr, "interference: ", log.LstdFlags)
	}
	return o
}
