package layout

import (
	"strconv"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/joker_tool/utils"
)

type WidgetKind uint8

const (
	WidgetGroup WidgetKind = iota
	WidgetLayout
	WidgetMain
	WidgetPane
)

var widgetKindNames = [...]string{"Group", "Layout", "MainWidget", "Pane"}

const (
	widgetRecordSize = 0x44
	widgetKindShift  = 4
	widgetKindMask   = 3 << widgetKindShift
)

func widgetKindFromFlags(flags uint32) WidgetKind {
	return WidgetKind((flags & widgetKindMask) >> widgetKindShift)
}

func (k WidgetKind) String() string {
	if int(k) < len(widgetKindNames) {
		return widgetKindNames[k]
	}
	return "WidgetKind(" + strconv.Itoa(int(k)) + ")"
}

func (k WidgetKind) MarshalText() ([]byte, error) {
	if int(k) >= len(widgetKindNames) {
		return nil, malformedf("widget kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *WidgetKind) UnmarshalText(text []byte) error {
	for i, name := range widgetKindNames {
		if name == string(text) {
			*k = WidgetKind(i)
			return nil
		}
	}
	if v, err := strconv.ParseUint(string(text), 0, 8); err == nil && int(v) < len(widgetKindNames) {
		*k = WidgetKind(v)
		return nil
	}
	return malformedf("unknown widget kind %q", text)
}

// Transform is the part of a widget record shared by every kind
type Transform struct {
	Translate mgl32.Vec3 `yaml:"translate,flow" json:"translate"`
	Scale     mgl32.Vec3 `yaml:"scale,flow" json:"scale"`
	Rotate    mgl32.Vec3 `yaml:"rotate,flow" json:"rotate"`
	X2C       mgl32.Vec2 `yaml:"x2C,flow" json:"x2C"`
	X34       mgl32.Vec2 `yaml:"x34,flow" json:"x34"`
	X3C       float32    `yaml:"x3C" json:"x3C"`
	Color     mgl32.Vec4 `yaml:"color,flow" json:"color"`
}

func (t *Transform) read(bs *utils.BufStack) {
	t.Translate = bs.ReadVec3()
	t.Scale = bs.ReadVec3()
	t.Rotate = bs.ReadVec3()
	t.X2C = bs.ReadVec2()
	t.X34 = bs.ReadVec2()
	t.X3C = bs.ReadLF()
	t.Color = bs.ReadColor()
}

func (t *Transform) write(bw *utils.BufWriter) {
	bw.WVec3(t.Translate)
	bw.WVec3(t.Scale)
	bw.WVec3(t.Rotate)
	bw.WVec2(t.X2C)
	bw.WVec2(t.X34)
	bw.WF(t.X3C)
	bw.WColor(t.Color)
}

// widgetRecord is one entry of pre-order widget array
type widgetRecord struct {
	flags           uint32
	objectIdx       uint16
	numChildWidgets uint16
	Transform
}

func (r *widgetRecord) kind() WidgetKind { return widgetKindFromFlags(r.flags) }

// childCount returns how many following records form direct children
func (r *widgetRecord) childCount() int {
	switch r.kind() {
	case WidgetGroup:
		return int(r.objectIdx)
	case WidgetLayout:
		return int(r.numChildWidgets)
	}
	return 0
}

func (r *widgetRecord) read(bs *utils.BufStack) {
	r.flags = bs.ReadLU32()
	r.objectIdx = bs.ReadLU16()
	r.numChildWidgets = bs.ReadLU16()
	r.Transform.read(bs)
}

func (r *widgetRecord) write(bw *utils.BufWriter) {
	bw.W32(r.flags)
	bw.W16(r.objectIdx)
	bw.W16(r.numChildWidgets)
	r.Transform.write(bw)
}

// Widget is a node of layout scene tree.
//
// Meaning of the record index slots depends on Kind. Group and Layout
// children counts are always taken from Widgets, Pane widgets refer
// to pane by name. Slots with no structural meaning for the kind are
// kept in ObjectIdx and NumChildWidgets so decoded data survives.
type Widget struct {
	Name  string     `yaml:"name" json:"name"`
	Kind  WidgetKind `yaml:"type" json:"type"`
	Flags uint32     `yaml:"flags" json:"flags"` // kind bits 4-5 are ignored

	Pane string `yaml:"pane,omitempty" json:"pane,omitempty"` // Pane kind only

	ObjectIdx       uint16 `yaml:"objectIdx,omitempty" json:"objectIdx,omitempty"`             // Layout and MainWidget
	NumChildWidgets uint16 `yaml:"numChildWidgets,omitempty" json:"numChildWidgets,omitempty"` // Group, Pane and MainWidget

	Transform `yaml:",inline"`

	Widgets []*Widget `yaml:"widgets,omitempty" json:"widgets,omitempty"` // Group and Layout only
}

// Walk visits w and all its descendants in pre-order
func (w *Widget) Walk(fn func(w *Widget) error) error {
	if err := fn(w); err != nil {
		return err
	}
	for _, child := range w.Widgets {
		if err := child.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

func (w *Widget) Find(name string) *Widget {
	var found *Widget
	w.Walk(func(c *Widget) error {
		if found == nil && c.Name == name {
			found = c
		}
		return nil
	})
	return found
}
