package translation

import "context"

// Record is one settled translation call.
type Record struct {
	SourceLang     string
	TargetLang     string
	OriginalText   string
	TranslatedText string
	Backend        string // empty when no backend produced a result
	Mode           string
	ErrorMessage   string
	LatencyMS      int64
}

// Recorder persists settled calls. Errors are logged by the orchestrator and
// never reach its caller.
type Recorder interface {
	Record(ctx context.Context, entry Record) error
}
