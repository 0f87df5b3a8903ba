// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/examprep/answerkey/internal/domain"
)

// DiagnosticObserver receives one diagnostic per graded submission.
// Comparators never log directly; they report here.
//
// Implementations must be safe for concurrent use, since the validator is
// called from many request goroutines at once. Observe must not block for
// long: it runs inline with grading.
type DiagnosticObserver interface {
	Observe(ctx context.Context, d domain.Diagnostic)
}

// ObserverFunc adapts a plain function to DiagnosticObserver.
type ObserverFunc func(ctx context.Context, d domain.Diagnostic)

// Observe calls f(ctx, d).
func (f ObserverFunc) Observe(ctx context.Context, d domain.Diagnostic) { f(ctx, d) }

// NopObserver discards every diagnostic.
type NopObserver struct{}

// Observe implements DiagnosticObserver.
func (NopObserver) Observe(context.Context, domain.Diagnostic) {}

// MultiObserver fans a diagnostic out to every observer in order. A panic in
// one observer is recovered and the remaining observers still run.
type MultiObserver []DiagnosticObserver

// Observe implements DiagnosticObserver.
func (m MultiObserver) Observe(ctx context.Context, d domain.Diagnostic) {
	for _, o := range m {
		if o != nil {
			observeSafely(ctx, o, d)
		}
	}
}

func observeSafely(ctx context.Context, o DiagnosticObserver, d domain.Diagnostic) {
	defer func() { _ = recover() }()
	o.Observe(ctx, d)
}
