package gui

import (
	"sync"

	"kbmod/internal/checklist"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// rowView draws a checklist model as fixed-height rows and reports a mouse
// button release over a row through OnRowClicked.
type rowView struct {
	widget.BaseWidget

	model *checklist.Model

	OnRowClicked func(row int)
}

var _ desktop.Mouseable = (*rowView)(nil)

func newRowView(model *checklist.Model) *rowView {
	v := &rowView{model: model}
	v.ExtendBaseWidget(v)
	return v
}

// rowHeight is the height of every row: one padded line of label text in
// the current theme.
func rowHeight() float32 {
	text := fyne.MeasureText("Ag", theme.TextSize(), fyne.TextStyle{})
	return max(text.Height+2*theme.InnerPadding(), theme.IconInlineSize())
}

// RowAt resolves a position inside the view to a row index.
func (v *rowView) RowAt(pos fyne.Position) (int, bool) {
	if pos.Y < 0 {
		return -1, false
	}
	row := int(pos.Y / rowHeight())
	if row >= v.model.Len() {
		return -1, false
	}
	return row, true
}

// MouseDown is required by desktop.Mouseable; only the release matters.
func (v *rowView) MouseDown(*desktop.MouseEvent) {}

// MouseUp forwards a release over a real row as a click.
func (v *rowView) MouseUp(ev *desktop.MouseEvent) {
	row, ok := v.RowAt(ev.Position)
	if !ok {
		return
	}
	if v.OnRowClicked != nil {
		v.OnRowClicked(row)
	}
}

func (v *rowView) CreateRenderer() fyne.WidgetRenderer {
	r := &rowViewRenderer{view: v}
	r.Refresh()
	return r
}

type rowObject struct {
	icon  *widget.Icon
	label *widget.Label
	box   *fyne.Container
}

func newRowObject() *rowObject {
	icon := widget.NewIcon(nil)
	label := widget.NewLabel("")
	return &rowObject{icon: icon, label: label, box: container.NewHBox(icon, label)}
}

func (o *rowObject) update(item *checklist.Item) {
	o.label.SetText(item.Text())
	if item.IsEnabled() {
		o.label.Importance = widget.MediumImportance
	} else {
		o.label.Importance = widget.LowImportance
	}
	o.label.Refresh()

	if !item.IsCheckable() {
		o.icon.Hide()
		return
	}
	o.icon.Show()
	switch item.CheckState() {
	case checklist.Checked:
		o.icon.SetResource(theme.CheckButtonCheckedIcon())
	case checklist.PartiallyChecked:
		o.icon.SetResource(theme.ContentRemoveIcon())
	default:
		o.icon.SetResource(theme.CheckButtonIcon())
	}
}

// rowViewRenderer may be refreshed from the config watcher goroutine as
// well as the UI, so its row objects are guarded.
type rowViewRenderer struct {
	view *rowView

	mu      sync.Mutex
	rows    []*rowObject
	objects []fyne.CanvasObject
}

func (r *rowViewRenderer) Layout(size fyne.Size) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layout(size)
}

func (r *rowViewRenderer) layout(size fyne.Size) {
	h := rowHeight()
	for i, row := range r.rows {
		row.box.Move(fyne.NewPos(0, float32(i)*h))
		row.box.Resize(fyne.NewSize(size.Width, h))
	}
}

func (r *rowViewRenderer) MinSize() fyne.Size {
	r.mu.Lock()
	defer r.mu.Unlock()
	var w float32
	for _, row := range r.rows {
		w = max(w, row.box.MinSize().Width)
	}
	return fyne.NewSize(w, rowHeight()*float32(len(r.rows)))
}

func (r *rowViewRenderer) Objects() []fyne.CanvasObject {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]fyne.CanvasObject(nil), r.objects...)
}

// Refresh grows the row objects to match the model and redraws every row.
// Rows are never removed from the model, so neither are row objects.
func (r *rowViewRenderer) Refresh() {
	items := r.view.model.Items()
	r.mu.Lock()
	for len(r.rows) < len(items) {
		row := newRowObject()
		r.rows = append(r.rows, row)
		r.objects = append(r.objects, row.box)
	}
	for i, item := range items {
		r.rows[i].update(item)
	}
	r.layout(r.view.Size())
	r.mu.Unlock()
	canvas.Refresh(r.view)
}

func (r *rowViewRenderer) Destroy() {}
