// Package checklist provides an ordered container of checkable items with
// synchronous change notifications. Front ends render it; the modifier
// list control drives it.
package checklist

import (
	"fmt"
	"sync"
)

// CheckState is the check state of an item.
type CheckState int

// Check states
const (
	Unchecked CheckState = iota
	PartiallyChecked
	Checked
)

func (s CheckState) String() string {
	switch s {
	case Unchecked:
		return "Unchecked"
	case PartiallyChecked:
		return "PartiallyChecked"
	case Checked:
		return "Checked"
	default:
		return fmt.Sprintf("CheckState(%d)", int(s))
	}
}

// Item is a single row of a Model. Its accessors are safe for concurrent
// use; change notifications run after the item's lock is released.
type Item struct {
	mu        sync.RWMutex
	model     *Model
	text      string
	checkable bool
	enabled   bool
	state     CheckState
}

// NewItem returns an enabled, non-checkable item.
func NewItem(text string) *Item {
	return &Item{text: text, enabled: true}
}

// NewCheckableItem returns an enabled, checkable item in the given state.
func NewCheckableItem(text string, state CheckState) *Item {
	return &Item{text: text, checkable: true, enabled: true, state: state}
}

func (it *Item) Text() string {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.text
}

func (it *Item) IsCheckable() bool {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.checkable
}

func (it *Item) IsEnabled() bool {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.enabled
}

func (it *Item) CheckState() CheckState {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.state
}

func (it *Item) IsChecked() bool { return it.CheckState() == Checked }

// Row returns the item's index in its model, or -1 when detached.
func (it *Item) Row() int {
	m := it.owner()
	if m == nil {
		return -1
	}
	return m.Row(it)
}

// SetText changes the label.
func (it *Item) SetText(text string) {
	it.update(func() bool {
		if it.text == text {
			return false
		}
		it.text = text
		return true
	})
}

// SetCheckable changes whether the item takes part in check toggling.
func (it *Item) SetCheckable(checkable bool) {
	it.update(func() bool {
		if it.checkable == checkable {
			return false
		}
		it.checkable = checkable
		return true
	})
}

// SetEnabled changes whether the item accepts interaction.
func (it *Item) SetEnabled(enabled bool) {
	it.update(func() bool {
		if it.enabled == enabled {
			return false
		}
		it.enabled = enabled
		return true
	})
}

// SetCheckState changes the check state. Any CheckState value is stored as is.
func (it *Item) SetCheckState(state CheckState) {
	it.update(func() bool {
		if it.state == state {
			return false
		}
		it.state = state
		return true
	})
}

// update applies set under the write lock and notifies the owning model
// when set reports a change.
func (it *Item) update(set func() bool) {
	it.mu.Lock()
	changed := set()
	m := it.model
	it.mu.Unlock()

	if changed && m != nil {
		m.itemChanged(it)
	}
}

func (it *Item) owner() *Model {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.model
}

// adopt attaches it to m, reporting false when it already has an owner.
func (it *Item) adopt(m *Model) bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.model != nil {
		return false
	}
	it.model = m
	return true
}

// Model is an ordered list of items. It is safe for concurrent use.
// Observers are called synchronously, without the model's lock held.
type Model struct {
	mu    sync.RWMutex
	items []*Item

	changedListeners  []func(*Item)
	insertedListeners []func(first, last int)
}

// New returns an empty model.
func New() *Model {
	return &Model{}
}

// Len returns the number of rows.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Item returns the item at row. It panics when row is out of range.
func (m *Model) Item(row int) *Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[row]
}

// Items returns a copy of the rows in order.
func (m *Model) Items() []*Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Item, len(m.items))
	copy(out, m.items)
	return out
}

// Row returns the index of it, or -1.
func (m *Model) Row(it *Item) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, item := range m.items {
		if item == it {
			return i
		}
	}
	return -1
}

// InsertRow places it at row, shifting later rows down. row must be in
// [0, Len()]; anything else panics. An item already owned by a model panics.
func (m *Model) InsertRow(row int, it *Item) {
	m.mu.Lock()
	if row < 0 || row > len(m.items) {
		n := len(m.items)
		m.mu.Unlock()
		panic(fmt.Sprintf("checklist: insert row %d out of range [0, %d]", row, n))
	}
	if !it.adopt(m) {
		m.mu.Unlock()
		panic("checklist: item already belongs to a model")
	}
	m.items = append(m.items, nil)
	copy(m.items[row+1:], m.items[row:])
	m.items[row] = it
	listeners := m.insertedListeners
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(row, row)
	}
}

// AppendRow adds it after the last row.
func (m *Model) AppendRow(it *Item) {
	m.mu.Lock()
	n := len(m.items)
	m.mu.Unlock()
	m.InsertRow(n, it)
}

// OnItemChanged registers fn to run whenever an item's data changes.
func (m *Model) OnItemChanged(fn func(*Item)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changedListeners = append(m.changedListeners, fn)
}

// OnRowsInserted registers fn to run after rows first..last are inserted.
func (m *Model) OnRowsInserted(fn func(first, last int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertedListeners = append(m.insertedListeners, fn)
}

func (m *Model) itemChanged(it *Item) {
	m.mu.RLock()
	listeners := m.changedListeners
	m.mu.RUnlock()

	for _, fn := range listeners {
		fn(it)
	}
}
