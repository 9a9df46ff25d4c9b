package worldgen

import (
	"math/rand"
	"time"

	"airogue/internal/debug"
	"airogue/internal/logging"
)

// Options parameterizes a stage generator. An empty Model defers to the
// completion service's default; Temperature follows the 0.0-2.0 range.
type Options struct {
	Model       string
	Temperature float64
	Debug       *debug.Logger
	Log         *logging.GenerationLogger
	Rand        *rand.Rand
}

type stageBase struct {
	completer Completer
	extractor *Extractor
	opts      Options
}

func newStageBase(c Completer, opts Options) stageBase {
	return stageBase{
		completer: c,
		extractor: NewExtractor(c, opts.Model, opts.Temperature, opts.Debug, opts.Log),
		opts:      opts,
	}
}

func (s stageBase) record(stage Stage, kind, systemPrompt, userPrompt, response string, duration time.Duration, callErr error) {
	if logErr := s.opts.Log.Record(string(stage), kind, s.opts.Model, systemPrompt, userPrompt, response, duration, callErr); logErr != nil {
		s.opts.Debug.Printf("stage %s: failed to record %s call: %v", stage, kind, logErr)
	}
}
