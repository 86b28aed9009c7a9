package gui

import (
	"sync"

	"kbmod/internal/checklist"
	"kbmod/internal/modlist"
	"kbmod/pkg/types"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// ModifierList is a combo box whose dropdown is a checklist of keyboard
// modifiers. The selection is exposed as a types.Bitmask.
//
// Tapping the control opens the dropdown; releasing the mouse over a row
// toggles it and the dropdown stays open until dismissed. Scroll wheel
// input over the closed control is swallowed so it cannot change the
// selection.
type ModifierList struct {
	widget.BaseWidget

	// OnModifierChanged is called after a single row changes state
	OnModifierChanged func(mod types.Modifier, state checklist.CheckState)
	// OnBitmaskChanged is called with the new aggregate after every row change
	OnBitmaskChanged func(mask types.Bitmask)

	// PlaceHolder is shown when no modifier is checked
	PlaceHolder string

	list        *modlist.List
	view        *rowView
	popUp       *widget.PopUp
	abbreviated bool
}

var _ fyne.Scrollable = (*ModifierList)(nil)
var _ fyne.Tappable = (*ModifierList)(nil)

// NewModifierList creates an empty modifier list.
func NewModifierList() *ModifierList {
	m := &ModifierList{
		list:        modlist.New(),
		PlaceHolder: "(no modifiers)",
	}
	m.ExtendBaseWidget(m)

	m.view = newRowView(m.list.Model())
	m.view.OnRowClicked = m.list.Toggle

	model := m.list.Model()
	model.OnItemChanged(func(*checklist.Item) { m.refreshRows() })
	model.OnRowsInserted(func(int, int) { m.refreshRows() })

	m.list.OnModifierChanged(func(mod types.Modifier, state checklist.CheckState) {
		if m.OnModifierChanged != nil {
			m.OnModifierChanged(mod, state)
		}
	})
	m.list.OnBitmaskChanged(func(mask types.Bitmask) {
		if m.OnBitmaskChanged != nil {
			m.OnBitmaskChanged(mask)
		}
	})
	return m
}

// NewModifierListWithBitmask creates a modifier list with one checked row
// per modifier set in mask. It is wired exactly like NewModifierList.
func NewModifierListWithBitmask(mask types.Bitmask) *ModifierList {
	m := NewModifierList()
	m.PopulateFromBitmask(mask)
	return m
}

// List returns the underlying control.
func (m *ModifierList) List() *modlist.List {
	return m.list
}

// Len returns the number of rows.
func (m *ModifierList) Len() int {
	return m.list.Len()
}

// RowAt returns the row at index. Out of range indexes panic.
func (m *ModifierList) RowAt(index int) *checklist.Item {
	return m.list.RowAt(index)
}

// InsertCheckableRow inserts a checkable row at index.
func (m *ModifierList) InsertCheckableRow(index int, label string, initial checklist.CheckState) {
	m.list.InsertCheckableRow(index, label, initial)
}

// AddCheckableRow appends a checkable row, unchecked unless a state is given.
func (m *ModifierList) AddCheckableRow(label string, initial ...checklist.CheckState) {
	m.list.AddCheckableRow(label, initial...)
}

// AddModifierRow appends a row for mod.
func (m *ModifierList) AddModifierRow(mod types.Modifier, initial ...checklist.CheckState) {
	m.list.AddModifierRow(mod, initial...)
}

// PopulateFromBitmask appends a checked row per modifier in mask.
func (m *ModifierList) PopulateFromBitmask(mask types.Bitmask) {
	m.list.PopulateFromBitmask(mask)
}

// Bitmask returns the checked modifiers.
func (m *ModifierList) Bitmask() types.Bitmask {
	return m.list.Bitmask()
}

// SetBitmask re-syncs every row to mask without firing callbacks.
func (m *ModifierList) SetBitmask(mask types.Bitmask) {
	m.list.SetBitmask(mask)
}

// SetAbbreviated switches the summary between "Control+Shift" and "Ctrl+Shift".
func (m *ModifierList) SetAbbreviated(abbreviated bool) {
	m.abbreviated = abbreviated
	m.Refresh()
}

// Tapped opens the dropdown below the control.
func (m *ModifierList) Tapped(*fyne.PointEvent) {
	c := fyne.CurrentApp().Driver().CanvasForObject(m)
	if c == nil {
		return
	}
	if m.popUp == nil {
		m.popUp = widget.NewPopUp(m.view, c)
	}

	pos := fyne.CurrentApp().Driver().AbsolutePositionForObject(m)
	m.popUp.ShowAtPosition(pos.Add(fyne.NewPos(0, m.Size().Height)))
	m.popUp.Resize(fyne.NewSize(max(m.Size().Width, m.view.MinSize().Width), m.view.MinSize().Height))
}

// HidePopUp closes the dropdown if it is open.
func (m *ModifierList) HidePopUp() {
	if m.popUp != nil {
		m.popUp.Hide()
	}
}

// Scrolled swallows wheel input.
func (m *ModifierList) Scrolled(*fyne.ScrollEvent) {}

func (m *ModifierList) summary() string {
	mask := m.list.Bitmask()
	if mask == 0 {
		return m.PlaceHolder
	}
	return mask.Format(m.abbreviated)
}

func (m *ModifierList) refreshRows() {
	m.view.Refresh()
	m.Refresh()
}

func (m *ModifierList) CreateRenderer() fyne.WidgetRenderer {
	r := &modifierListRenderer{
		list:  m,
		bg:    canvas.NewRectangle(theme.InputBackgroundColor()),
		label: widget.NewLabel(m.summary()),
		icon:  widget.NewIcon(theme.MenuDropDownIcon()),
	}
	r.bg.CornerRadius = theme.InputRadiusSize()
	r.content = container.NewBorder(nil, nil, nil, r.icon, r.label)
	return r
}

type modifierListRenderer struct {
	mu      sync.Mutex
	list    *ModifierList
	bg      *canvas.Rectangle
	label   *widget.Label
	icon    *widget.Icon
	content *fyne.Container
}

func (r *modifierListRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.content.Resize(size)
}

func (r *modifierListRenderer) MinSize() fyne.Size {
	return r.content.MinSize()
}

func (r *modifierListRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.bg, r.content}
}

func (r *modifierListRenderer) Refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bg.FillColor = theme.InputBackgroundColor()
	r.bg.Refresh()
	r.label.SetText(r.list.summary())
}

func (r *modifierListRenderer) Destroy() {}
