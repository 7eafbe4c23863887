package translation

import "sync"

// Progress messages published while the orchestrator is busy.
const (
	ProgressTranslating = "translating"
	// ExhaustedMessage is the user-facing notice when no backend produced a result.
	ExhaustedMessage = "Translation failed: no translation service is reachable right now."
)

// State is a snapshot of the orchestrator's observable signals.
//
// Downloading and Translating are both false and ProgressMessage is empty
// once a call settles. ErrorMessage is sticky: only a later failure (or the
// clear-on-start policy) replaces it.
type State struct {
	Downloading     bool   `json:"downloading"`
	Translating     bool   `json:"translating"`
	ProgressMessage string `json:"progress_message"`
	ErrorMessage    string `json:"error_message"`
}

// stateStore guards State for memory safety. It does not serialize calls:
// overlapping translations still overwrite each other's indicators.
type stateStore struct {
	mu       sync.RWMutex
	current  State
	onChange func(State)
}

func newStateStore(onChange func(State)) *stateStore {
	return &stateStore{onChange: onChange}
}

func (s *stateStore) snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *stateStore) update(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.current)
	next := s.current
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(next)
	}
}

func (s *stateStore) beginDownload(message string) {
	s.update(func(st *State) {
		st.Downloading = true
		st.ProgressMessage = message
	})
}

func (s *stateStore) endDownload() {
	s.update(func(st *State) {
		st.Downloading = false
		st.ProgressMessage = ""
	})
}

func (s *stateStore) beginTranslate() {
	s.update(func(st *State) {
		st.Translating = true
		st.ProgressMessage = ProgressTranslating
	})
}

func (s *stateStore) endTranslate() {
	s.update(func(st *State) {
		st.Translating = false
		st.ProgressMessage = ""
	})
}

func (s *stateStore) setError(message string) {
	s.update(func(st *State) {
		st.ErrorMessage = message
	})
}

func (s *stateStore) clearError() {
	if s.snapshot().ErrorMessage == "" {
		return
	}
	s.setError("")
}
