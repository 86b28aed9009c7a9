// Package modlist implements the modifier checklist control: an ordered list
// of checkable rows, one per keyboard modifier, kept in sync with a modifier
// bitmask. It is independent of any toolkit; internal/gui and internal/tui
// host it.
package modlist

import (
	"sync"
	"sync/atomic"

	"kbmod/internal/checklist"
	"kbmod/internal/log"
	"kbmod/pkg/types"
)

// List is the modifier checklist control.
//
// Mutating operations are serialised, so a row click and a SetBitmask
// coming from another goroutine never interleave. Observers run while the
// list is held and must not call back into its mutating methods.
type List struct {
	model *checklist.Model

	mu         sync.Mutex
	suppressed atomic.Int32

	modifierListeners []func(types.Modifier, checklist.CheckState)
	bitmaskListeners  []func(types.Bitmask)
}

// New returns an empty, wired list.
func New() *List {
	l := &List{model: checklist.New()}
	l.model.OnItemChanged(l.handleItemChanged)
	return l
}

// NewWithBitmask returns a wired list holding one checked row per modifier
// set in mask.
func NewWithBitmask(mask types.Bitmask) *List {
	l := New()
	l.PopulateFromBitmask(mask)
	return l
}

// Model exposes the backing model for rendering.
func (l *List) Model() *checklist.Model {
	return l.model
}

// Len returns the row count.
func (l *List) Len() int {
	return l.model.Len()
}

// RowAt returns the row at index. Out of range indexes panic.
func (l *List) RowAt(index int) *checklist.Item {
	return l.model.Item(index)
}

// InsertCheckableRow inserts a checkable row at index.
func (l *List) InsertCheckableRow(index int, label string, initial checklist.CheckState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.model.InsertRow(index, checklist.NewCheckableItem(label, initial))
}

// AddCheckableRow appends a checkable row. The state defaults to Unchecked.
func (l *List) AddCheckableRow(label string, initial ...checklist.CheckState) {
	state := checklist.Unchecked
	if len(initial) > 0 {
		state = initial[0]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.model.AppendRow(checklist.NewCheckableItem(label, state))
}

// AddModifierRow appends a row labelled with the modifier's full name. The
// state defaults to Unchecked.
func (l *List) AddModifierRow(mod types.Modifier, initial ...checklist.CheckState) {
	l.AddCheckableRow(mod.Name(false), initial...)
}

// PopulateFromBitmask appends a checked row for every modifier set in mask,
// in canonical order. Existing rows are kept, so repeated calls duplicate.
func (l *List) PopulateFromBitmask(mask types.Bitmask) {
	for _, mod := range types.AllModifiers {
		if mask.Has(mod) {
			l.AddModifierRow(mod, checklist.Checked)
		}
	}
}

// Bitmask returns the union of every checked modifier row.
func (l *List) Bitmask() types.Bitmask {
	var mask types.Bitmask
	for i := 0; i < l.model.Len(); i++ {
		item := l.model.Item(i)
		mod, ok := rowModifier(item)
		if ok && item.CheckState() == checklist.Checked {
			mask = mask.With(mod)
		}
	}
	return mask
}

// SetBitmask checks exactly the modifier rows present in mask. No
// modifier or bitmask notifications fire while it runs.
func (l *List) SetBitmask(mask types.Bitmask) {
	l.mu.Lock()
	defer l.mu.Unlock()
	defer l.suppress()()

	for i := 0; i < l.model.Len(); i++ {
		item := l.model.Item(i)
		mod, ok := rowModifier(item)
		if !ok {
			continue
		}
		if mask.Has(mod) {
			item.SetCheckState(checklist.Checked)
		} else {
			item.SetCheckState(checklist.Unchecked)
		}
	}
}

// Toggle flips the check state of the row at index. It is the row-click handler.
func (l *List) Toggle(index int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item := l.model.Item(index)

	switch state := item.CheckState(); state {
	case checklist.Checked:
		item.SetCheckState(checklist.Unchecked)
	case checklist.Unchecked:
		item.SetCheckState(checklist.Checked)
	default:
		log.LogWithFields(log.F("row", index), log.F("state", state.String())).
			Warn("toggle encountered an unknown check state")
	}
}

// OnModifierChanged registers fn for single-row check state changes.
func (l *List) OnModifierChanged(fn func(types.Modifier, checklist.CheckState)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.modifierListeners = append(l.modifierListeners, fn)
}

// OnBitmaskChanged registers fn for aggregate bitmask changes.
func (l *List) OnBitmaskChanged(fn func(types.Bitmask)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bitmaskListeners = append(l.bitmaskListeners, fn)
}

// suppress blocks notifications until the returned func is called.
func (l *List) suppress() func() {
	l.suppressed.Add(1)
	return func() { l.suppressed.Add(-1) }
}

func (l *List) handleItemChanged(item *checklist.Item) {
	mod, ok := rowModifier(item)
	if !ok || l.suppressed.Load() > 0 {
		return
	}

	state := item.CheckState()
	for _, fn := range l.modifierListeners {
		fn(mod, state)
	}

	mask := l.Bitmask()
	log.Debugf("modifier %s now %s, bitmask 0x%x", mod, state, uint32(mask))
	for _, fn := range l.bitmaskListeners {
		fn(mask)
	}
}

// rowModifier resolves a checkable row to its modifier. Only the exact
// label AddModifierRow writes resolves; aliases such as "ctrl" stay inert.
func rowModifier(item *checklist.Item) (types.Modifier, bool) {
	if !item.IsCheckable() {
		return types.ModNull, false
	}
	text := item.Text()
	for _, mod := range types.AllModifiers {
		if mod.Name(false) == text {
			return mod, true
		}
	}
	return types.ModNull, false
}
