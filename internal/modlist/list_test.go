package modlist

import (
	"bytes"
	"sync"
	"testing"

	"kbmod/internal/checklist"
	"kbmod/internal/log"
	"kbmod/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type modifierEvent struct {
	mod   types.Modifier
	state checklist.CheckState
}

type recorder struct {
	modifiers []modifierEvent
	masks     []types.Bitmask
}

func record(l *List) *recorder {
	r := &recorder{}
	l.OnModifierChanged(func(m types.Modifier, s checklist.CheckState) {
		r.modifiers = append(r.modifiers, modifierEvent{m, s})
	})
	l.OnBitmaskChanged(func(b types.Bitmask) {
		r.masks = append(r.masks, b)
	})
	return r
}

func fullList() *List {
	l := New()
	for _, m := range types.AllModifiers {
		l.AddModifierRow(m)
	}
	return l
}

func TestBitmaskRoundTrip(t *testing.T) {
	l := fullList()
	for b := types.Bitmask(0); b <= 0xF; b++ {
		l.SetBitmask(b)
		assert.Equal(t, b, l.Bitmask(), "mask 0x%x", uint32(b))
	}
}

func TestPopulateFromBitmask(t *testing.T) {
	mask := types.Bitmask(types.ModShift | types.ModAlt | types.ModWin)
	l := New()
	l.PopulateFromBitmask(mask)

	require.Equal(t, mask.Count(), l.Len())
	want := []string{"Alt", "Shift", "Win"}
	for i, label := range want {
		row := l.RowAt(i)
		assert.Equal(t, label, row.Text())
		assert.True(t, row.IsCheckable())
		assert.Equal(t, checklist.Checked, row.CheckState())
	}
	assert.Equal(t, mask, l.Bitmask())

	// A second call appends duplicates rather than clearing
	l.PopulateFromBitmask(types.Bitmask(types.ModControl))
	assert.Equal(t, 4, l.Len())
	assert.Equal(t, "Control", l.RowAt(3).Text())
}

func TestNewWithBitmaskIsWired(t *testing.T) {
	l := NewWithBitmask(types.Bitmask(types.ModControl | types.ModShift))
	r := record(l)

	l.Toggle(0)
	require.Len(t, r.modifiers, 1)
	assert.Equal(t, modifierEvent{types.ModControl, checklist.Unchecked}, r.modifiers[0])
	assert.Equal(t, []types.Bitmask{types.Bitmask(types.ModShift)}, r.masks)
}

func TestToggleEmitsEvents(t *testing.T) {
	l := fullList()
	l.SetBitmask(types.Bitmask(types.ModControl | types.ModShift))
	r := record(l)

	l.Toggle(1) // Control, checked
	assert.Equal(t, checklist.Unchecked, l.RowAt(1).CheckState())
	require.Len(t, r.modifiers, 1)
	assert.Equal(t, modifierEvent{types.ModControl, checklist.Unchecked}, r.modifiers[0])
	require.Len(t, r.masks, 1)
	assert.Equal(t, l.Bitmask(), r.masks[0])
	assert.Equal(t, types.Bitmask(types.ModShift), r.masks[0])

	l.Toggle(3) // Win, unchecked
	assert.Equal(t, modifierEvent{types.ModWin, checklist.Checked}, r.modifiers[1])
	assert.Equal(t, types.Bitmask(types.ModShift|types.ModWin), r.masks[1])
}

func TestSetBitmaskIsSilent(t *testing.T) {
	l := fullList()
	r := record(l)

	l.SetBitmask(0xF)
	l.SetBitmask(0)
	l.SetBitmask(types.Bitmask(types.ModAlt))

	assert.Empty(t, r.modifiers)
	assert.Empty(t, r.masks)

	// Notifications resume afterwards
	l.Toggle(0)
	assert.Len(t, r.modifiers, 1)
}

func TestSetBitmaskReleasesSuppressionOnPanic(t *testing.T) {
	l := fullList()
	r := record(l)
	l.model.OnItemChanged(func(*checklist.Item) { panic("boom") })

	assert.Panics(t, func() { l.SetBitmask(0xF) })
	assert.Zero(t, l.suppressed.Load())
	assert.Empty(t, r.masks)
	require.True(t, l.mu.TryLock(), "list stays usable after a panic")
	l.mu.Unlock()
}

func TestUnresolvableRowsAreInert(t *testing.T) {
	l := fullList()
	l.AddCheckableRow("Hyper", checklist.Checked)
	l.model.AppendRow(checklist.NewItem("Shift")) // not checkable
	r := record(l)

	assert.Equal(t, types.Bitmask(0), l.Bitmask())

	l.Toggle(4)
	assert.Equal(t, checklist.Unchecked, l.RowAt(4).CheckState())
	l.RowAt(5).SetCheckState(checklist.Checked)

	assert.Empty(t, r.modifiers)
	assert.Empty(t, r.masks)
	assert.Equal(t, types.Bitmask(0), l.Bitmask())

	l.SetBitmask(0xF)
	assert.Equal(t, checklist.Unchecked, l.RowAt(4).CheckState(), "SetBitmask skips unresolvable rows")
	assert.Equal(t, types.Bitmask(0xF), l.Bitmask())
}

func TestInsertCheckableRow(t *testing.T) {
	l := New()
	r := record(l)
	l.AddModifierRow(types.ModAlt)
	l.AddModifierRow(types.ModWin)
	l.InsertCheckableRow(1, "Shift", checklist.Checked)

	assert.Equal(t, "Shift", l.RowAt(1).Text())
	assert.Equal(t, types.Bitmask(types.ModShift), l.Bitmask())
	assert.Empty(t, r.masks, "insertion does not emit")

	assert.Panics(t, func() { l.RowAt(3) })
}

func TestToggleUnknownStateLogsAndDoesNothing(t *testing.T) {
	var buf bytes.Buffer
	log.Configure(log.WithOutput(&buf))
	defer log.Configure()

	l := New()
	l.AddModifierRow(types.ModShift, checklist.CheckState(9))
	r := record(l)

	l.Toggle(0)

	assert.Equal(t, checklist.CheckState(9), l.RowAt(0).CheckState())
	assert.Empty(t, r.modifiers)
	assert.Contains(t, buf.String(), "unknown check state")
	assert.Contains(t, buf.String(), "CheckState(9)")
}

func TestPartiallyCheckedRowDoesNotCount(t *testing.T) {
	l := fullList()
	l.RowAt(2).SetCheckState(checklist.PartiallyChecked)
	assert.Equal(t, types.Bitmask(0), l.Bitmask())
}

func TestAliasLabelsAreInert(t *testing.T) {
	l := New()
	l.AddCheckableRow("meta", checklist.Checked)
	l.AddCheckableRow("Ctrl", checklist.Checked)
	l.AddCheckableRow("shift", checklist.Checked)
	r := record(l)

	assert.Equal(t, types.Bitmask(0), l.Bitmask())
	l.Toggle(0)
	l.SetBitmask(0xF)
	assert.Empty(t, r.masks)
	assert.Equal(t, types.Bitmask(0), l.Bitmask())
}

func TestConcurrentSetBitmaskAndToggle(t *testing.T) {
	l := fullList()
	var mu sync.Mutex
	var toggles int
	l.OnModifierChanged(func(types.Modifier, checklist.CheckState) {
		mu.Lock()
		toggles++
		mu.Unlock()
	})

	const n = 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			l.SetBitmask(types.Bitmask(i % 16))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			l.Toggle(i % l.Len())
		}
	}()
	wg.Wait()

	// Every click lands outside a SetBitmask, so none is swallowed
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, n, toggles)
	assert.Zero(t, l.suppressed.Load())
}
