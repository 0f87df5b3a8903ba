package testutils

import (
	"context"
	"sync"

	"github.com/examprep/answerkey/internal/domain"
	"github.com/examprep/answerkey/internal/ports"
)

var _ ports.DiagnosticObserver = (*RecordingObserver)(nil)

// RecordingObserver keeps every diagnostic it receives. It is safe for
// concurrent use.
type RecordingObserver struct {
	mu          sync.Mutex
	diagnostics []domain.Diagnostic
}

// NewRecordingObserver returns an empty recorder.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{}
}

// Observe implements ports.DiagnosticObserver.
func (r *RecordingObserver) Observe(_ context.Context, d domain.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagnostics = append(r.diagnostics, d)
}

// Diagnostics returns a copy of everything recorded so far.
func (r *RecordingObserver) Diagnostics() []domain.Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Diagnostic, len(r.diagnostics))
	copy(out, r.diagnostics)
	return out
}

// Last returns the most recent diagnostic and whether there was one.
func (r *RecordingObserver) Last() (domain.Diagnostic, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.diagnostics) == 0 {
		return domain.Diagnostic{}, false
	}
	return r.diagnostics[len(r.diagnostics)-1], true
}

// Count returns how many diagnostics were recorded at level or above.
func (r *RecordingObserver) Count(level domain.DiagnosticLevel) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.diagnostics {
		if d.Level >= level {
			n++
		}
	}
	return n
}

// Reset drops everything recorded.
func (r *RecordingObserver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagnostics = nil
}
