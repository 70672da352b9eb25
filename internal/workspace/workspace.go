// Package workspace holds the interactive selection state of one viewer:
// the loaded dataset, the X field, the ordered Y fields and the chart kind.
package workspace

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"sheetviz/internal/sheet"
)

var (
	ErrNoDataset     = errors.New("no dataset loaded")
	ErrUnknownField  = errors.New("unknown field")
	ErrNotNumeric    = errors.New("field is not numeric")
	ErrStaleUpload   = errors.New("upload superseded by a newer one")
	ErrInvalidKind   = errors.New("invalid chart kind")
	ErrInvalidTicket = errors.New("ticket from another workspace")
)

// ChartKind selects the line or bar rendering variant.
type ChartKind string

const (
	Line ChartKind = "line"
	Bar  ChartKind = "bar"
)

// ParseChartKind validates a user supplied chart kind.
func ParseChartKind(s string) (ChartKind, error) {
	switch k := ChartKind(s); k {
	case Line, Bar:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Ticket tags one in-flight upload. Only the newest unfinished ticket may
// commit; a ticket that is aborted stops superseding the older ones.
type Ticket struct {
	owner      *Workspace
	generation uint64
}

// State is an immutable copy of a workspace.
type State struct {
	Dataset    *sheet.Dataset
	X          string
	Y          []string
	Kind       ChartKind
	Generation uint64
}

// Loaded reports whether a dataset has been committed.
func (s State) Loaded() bool { return !s.Dataset.Empty() }

// Workspace is safe for concurrent use.
type Workspace struct {
	mu      sync.Mutex
	dataset *sheet.Dataset
	x       string
	y       []string
	kind    ChartKind

	issued    uint64              // last ticket handed out
	pending   map[uint64]struct{} // tickets neither committed nor aborted
	settled   uint64              // newest ticket that committed, even if it was ignored
	committed uint64              // generation of the current dataset
}

// New returns an empty workspace drawing line charts.
func New() *Workspace {
	return &Workspace{kind: Line, pending: map[uint64]struct{}{}}
}

// Begin starts an upload and supersedes every earlier in-flight one.
func (w *Workspace) Begin() Ticket {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.issued++
	w.pending[w.issued] = struct{}{}
	return Ticket{owner: w, generation: w.issued}
}

// Abort withdraws a ticket whose upload failed, so it no longer supersedes
// the uploads that began before it.
func (w *Workspace) Abort(t Ticket) {
	if t.owner != w {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.pending, t.generation)
}

// Commit installs d if t is still the newest upload. An empty dataset is
// ignored and reports false. A superseded ticket returns ErrStaleUpload.
func (w *Workspace) Commit(t Ticket, d *sheet.Dataset) (bool, error) {
	if t.owner != w {
		return false, ErrInvalidTicket
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.pending[t.generation]; !ok || t.generation < w.settled {
		delete(w.pending, t.generation)
		return false, ErrStaleUpload
	}
	delete(w.pending, t.generation)
	for g := range w.pending {
		if g > t.generation {
			return false, ErrStaleUpload
		}
	}
	w.settled = t.generation
	if d.Empty() || len(d.Fields) == 0 {
		return false, nil
	}
	w.dataset = d
	w.x = d.Fields[0]
	w.y = nil
	w.committed = t.generation
	return true, nil
}

// Load commits d immediately, superseding any in-flight upload.
func (w *Workspace) Load(d *sheet.Dataset) (bool, error) {
	return w.Commit(w.Begin(), d)
}

// SelectX replaces the X field.
func (w *Workspace) SelectX(field string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dataset == nil {
		return ErrNoDataset
	}
	if !w.dataset.Has(field) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	w.x = field
	return nil
}

// ToggleY adds field to the Y list when absent and removes it when present.
// Additions keep their insertion order.
func (w *Workspace) ToggleY(field string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dataset == nil {
		return ErrNoDataset
	}
	if !w.dataset.Has(field) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if !w.dataset.IsNumericField(field) {
		return fmt.Errorf("%w: %q", ErrNotNumeric, field)
	}
	if i := slices.Index(w.y, field); i >= 0 {
		w.y = slices.Delete(slices.Clone(w.y), i, i+1)
		if len(w.y) == 0 {
			w.y = nil
		}
		return nil
	}
	w.y = append(slices.Clone(w.y), field)
	return nil
}

// SelectChartKind replaces the chart kind. It survives dataset reloads.
func (w *Workspace) SelectChartKind(kind ChartKind) error {
	if _, err := ParseChartKind(string(kind)); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.kind = kind
	return nil
}

// Snapshot returns a copy of the current state.
func (w *Workspace) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{
		Dataset:    w.dataset,
		X:          w.x,
		Y:          slices.Clone(w.y),
		Kind:       w.kind,
		Generation: w.committed,
	}
}
