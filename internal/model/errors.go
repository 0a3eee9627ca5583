package model

import (
	"errors"
	"fmt"
)

// ErrNotTrained is returned by every inference, explanation, importance and
// save operation invoked before training completes. It is a precondition
// violation, distinct from runtime prediction errors.
var ErrNotTrained = errors.New("model must be trained before use")

// PersistenceError reports a save/load I/O failure. The caller decides
// whether to fall back to retraining.
type PersistenceError struct {
	Op   string // "save" or "load"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("model %s failed for %q: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// SchemaError reports a persisted model whose stored feature schema cannot be
// reconciled with the running feature vocabulary.
type SchemaError struct {
	Feature string
	Reason  string
}

func (e *SchemaError) Error() string {
	if e.Feature != "" {
		return fmt.Sprintf("model schema mismatch on feature %q: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("model schema mismatch: %s", e.Reason)
}
