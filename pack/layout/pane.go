package layout

import (
	"encoding/json"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/joker_tool/utils"
)

type PaneType uint16

const (
	PaneTypeNull PaneType = iota
	PaneTypeBasic
	PaneTypeRect
	PaneTypeText
	PaneTypeColor
	PaneTypeQuad
	PaneTypeRotColor
	PaneTypeRotQuad
	paneTypeCount
)

var paneTypeNames = [paneTypeCount]string{
	"Null", "Basic", "Rect", "Text", "Color", "Quad", "RotColor", "RotQuad",
}

// payload length in bytes, type and size words not included
var panePayloadSizes = [paneTypeCount]int{
	0xc, 0x10, 0x14, 0x28, 0x18, 0x24, 0x2c, 0x38,
}

func (t PaneType) Valid() bool { return t < paneTypeCount }

func (t PaneType) String() string {
	if t.Valid() {
		return paneTypeNames[t]
	}
	return "PaneType(" + strconv.Itoa(int(t)) + ")"
}

// PayloadSize of pane record of this type or -1 for unknown type
func (t PaneType) PayloadSize() int {
	if t.Valid() {
		return panePayloadSizes[t]
	}
	return -1
}

func (t PaneType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, malformedf("pane type %d", uint16(t))
	}
	return []byte(t.String()), nil
}

func (t *PaneType) UnmarshalText(text []byte) error {
	for i, name := range paneTypeNames {
		if name == string(text) {
			*t = PaneType(i)
			return nil
		}
	}
	if v, err := strconv.ParseUint(string(text), 0, 16); err == nil && PaneType(v).Valid() {
		*t = PaneType(v)
		return nil
	}
	return malformedf("unknown pane type %q", text)
}

// PaneShape is geometry of one pane type. Implemented only by Pane* types of this package.
type PaneShape interface {
	Type() PaneType
	read(bs *utils.BufStack)
	write(bw *utils.BufWriter)
}

func newPaneShape(t PaneType) PaneShape {
	switch t {
	case PaneTypeNull:
		return &PaneNull{}
	case PaneTypeBasic:
		return &PaneBasic{}
	case PaneTypeRect:
		return &PaneRect{}
	case PaneTypeText:
		return &PaneText{}
	case PaneTypeColor:
		return &PaneColor{}
	case PaneTypeQuad:
		return &PaneQuad{}
	case PaneTypeRotColor:
		return &PaneRotColor{}
	case PaneTypeRotQuad:
		return &PaneRotQuad{}
	}
	return nil
}

type PaneNull struct {
	Translate mgl32.Vec3 `yaml:"translate,flow" json:"translate"`
}

func (p *PaneNull) Type() PaneType { return PaneTypeNull }

func (p *PaneNull) read(bs *utils.BufStack) {
	p.Translate = bs.ReadVec3()
}

func (p *PaneNull) write(bw *utils.BufWriter) {
	bw.WVec3(p.Translate)
}

type PaneBasic struct {
	Translate   mgl32.Vec3 `yaml:"translate,flow" json:"translate"`
	ZMultiplier float32    `yaml:"zMultiplier" json:"zMultiplier"`
}

func (p *PaneBasic) Type() PaneType { return PaneTypeBasic }

func (p *PaneBasic) read(bs *utils.BufStack) {
	p.Translate = bs.ReadVec3()
	p.ZMultiplier = bs.ReadLF()
}

func (p *PaneBasic) write(bw *utils.BufWriter) {
	bw.WVec3(p.Translate)
	bw.WF(p.ZMultiplier)
}

// PaneRect is also the common prefix of all sized panes
type PaneRect struct {
	Translate mgl32.Vec3 `yaml:"translate,flow" json:"translate"`
	Width     float32    `yaml:"width" json:"width"`
	Height    float32    `yaml:"height" json:"height"`
}

func (p *PaneRect) Type() PaneType { return PaneTypeRect }

func (p *PaneRect) read(bs *utils.BufStack) {
	p.Translate = bs.ReadVec3()
	p.Width = bs.ReadLF()
	p.Height = bs.ReadLF()
}

func (p *PaneRect) write(bw *utils.BufWriter) {
	bw.WVec3(p.Translate)
	bw.WF(p.Width)
	bw.WF(p.Height)
}

type PaneText struct {
	PaneRect   `yaml:",inline"`
	MsgID      uint32   `yaml:"msgId" json:"msgId"`
	B          float32  `yaml:"b" json:"b"`
	C          float32  `yaml:"c" json:"c"`
	Flags      uint16   `yaml:"flags" json:"flags"`
	NumEntries uint16   `yaml:"numEntries" json:"numEntries"`
	X          [4]uint8 `yaml:"x,flow" json:"x"`
}

func (p *PaneText) Type() PaneType { return PaneTypeText }

func (p *PaneText) read(bs *utils.BufStack) {
	p.PaneRect.read(bs)
	p.MsgID = bs.ReadLU32()
	p.B = bs.ReadLF()
	p.C = bs.ReadLF()
	p.Flags = bs.ReadLU16()
	p.NumEntries = bs.ReadLU16()
	copy(p.X[:], bs.Read(4))
}

func (p *PaneText) write(bw *utils.BufWriter) {
	p.PaneRect.write(bw)
	bw.W32(p.MsgID)
	bw.WF(p.B)
	bw.WF(p.C)
	bw.W16(p.Flags)
	bw.W16(p.NumEntries)
	bw.WBytes(p.X[:])
}

type PaneColor struct {
	PaneRect `yaml:",inline"`
	Color    mgl32.Vec4 `yaml:"color,flow" json:"color"`
}

func (p *PaneColor) Type() PaneType { return PaneTypeColor }

func (p *PaneColor) read(bs *utils.BufStack) {
	p.PaneRect.read(bs)
	p.Color = bs.ReadColor()
}

func (p *PaneColor) write(bw *utils.BufWriter) {
	p.PaneRect.write(bw)
	bw.WColor(p.Color)
}

// PaneQuad has color per corner
type PaneQuad struct {
	PaneRect `yaml:",inline"`
	Colors   [4]mgl32.Vec4 `yaml:"colors,flow" json:"colors"`
}

func (p *PaneQuad) Type() PaneType { return PaneTypeQuad }

func (p *PaneQuad) read(bs *utils.BufStack) {
	p.PaneRect.read(bs)
	for i := range p.Colors {
		p.Colors[i] = bs.ReadColor()
	}
}

func (p *PaneQuad) write(bw *utils.BufWriter) {
	p.PaneRect.write(bw)
	for _, c := range p.Colors {
		bw.WColor(c)
	}
}

// PaneRotation is the common prefix of rotated panes after PaneRect
type PaneRotation struct {
	Rotate mgl32.Vec2 `yaml:"rotate,flow" json:"rotate"`
	Scale  mgl32.Vec2 `yaml:"scale,flow" json:"scale"`
	A      uint16     `yaml:"a" json:"a"`
	B      uint16     `yaml:"b" json:"b"`
}

func (p *PaneRotation) read(bs *utils.BufStack) {
	p.Rotate = bs.ReadVec2()
	p.Scale = bs.ReadVec2()
	p.A = bs.ReadLU16()
	p.B = bs.ReadLU16()
}

func (p *PaneRotation) write(bw *utils.BufWriter) {
	bw.WVec2(p.Rotate)
	bw.WVec2(p.Scale)
	bw.W16(p.A)
	bw.W16(p.B)
}

type PaneRotColor struct {
	PaneRect     `yaml:",inline"`
	PaneRotation `yaml:",inline"`
	Color        mgl32.Vec4 `yaml:"color,flow" json:"color"`
}

func (p *PaneRotColor) Type() PaneType { return PaneTypeRotColor }

func (p *PaneRotColor) read(bs *utils.BufStack) {
	p.PaneRect.read(bs)
	p.PaneRotation.read(bs)
	p.Color = bs.ReadColor()
}

func (p *PaneRotColor) write(bw *utils.BufWriter) {
	p.PaneRect.write(bw)
	p.PaneRotation.write(bw)
	bw.WColor(p.Color)
}

type PaneRotQuad struct {
	PaneRect     `yaml:",inline"`
	PaneRotation `yaml:",inline"`
	Colors       [4]mgl32.Vec4 `yaml:"colors,flow" json:"colors"`
}

func (p *PaneRotQuad) Type() PaneType { return PaneTypeRotQuad }

func (p *PaneRotQuad) read(bs *utils.BufStack) {
	p.PaneRect.read(bs)
	p.PaneRotation.read(bs)
	for i := range p.Colors {
		p.Colors[i] = bs.ReadColor()
	}
}

func (p *PaneRotQuad) write(bw *utils.BufWriter) {
	p.PaneRect.write(bw)
	p.PaneRotation.write(bw)
	for _, c := range p.Colors {
		bw.WColor(c)
	}
}

// Pane is named leaf geometry referenced by Pane widgets
type Pane struct {
	Name  string
	Shape PaneShape
}

func (p *Pane) Type() PaneType {
	if p.Shape == nil {
		return paneTypeCount
	}
	return p.Shape.Type()
}

func readPane(bs *utils.BufStack, index int) (PaneShape, error) {
	t := PaneType(bs.ReadLU16())
	size := int(bs.ReadLU16())
	if err := bs.Err(); err != nil {
		return nil, truncated(err, "pane %d header", index)
	}
	if !t.Valid() {
		return nil, malformedf("pane %d: type tag %d", index, uint16(t))
	}
	if size < t.PayloadSize() {
		return nil, malformedf("pane %d: %v record size 0x%x less than payload 0x%x",
			index, t, size, t.PayloadSize())
	}
	start := bs.Pos()
	shape := newPaneShape(t)
	shape.read(bs)
	if err := bs.Err(); err != nil {
		return nil, truncated(err, "pane %d %v payload", index, t)
	}
	bs.Seek(start + size)
	return shape, nil
}

func writePane(bw *utils.BufWriter, p *Pane) error {
	if p.Shape == nil {
		return malformedf("pane %q has no shape", p.Name)
	}
	t := p.Shape.Type()
	bw.W16(uint16(t))
	bw.W16(uint16(t.PayloadSize()))
	start := bw.Pos()
	p.Shape.write(bw)
	if written := bw.Pos() - start; written != t.PayloadSize() {
		return errors.Errorf("pane %q: %v wrote 0x%x bytes instead of 0x%x", p.Name, t, written, t.PayloadSize())
	}
	return nil
}

type paneHead struct {
	Name string    `yaml:"name"`
	Type *PaneType `yaml:"type"`
}

func (p *Pane) MarshalYAML() (interface{}, error) {
	if p.Shape == nil {
		return nil, malformedf("pane %q has no shape", p.Name)
	}
	t := p.Shape.Type()
	var head, body yaml.Node
	if err := head.Encode(paneHead{Name: p.Name, Type: &t}); err != nil {
		return nil, errors.Wrapf(err, "pane %q", p.Name)
	}
	if err := body.Encode(p.Shape); err != nil {
		return nil, errors.Wrapf(err, "pane %q", p.Name)
	}
	head.Content = append(head.Content, body.Content...)
	return &head, nil
}

// MarshalJSON renders pane as name and type followed by shape fields,
// same layout as yaml document
func (p *Pane) MarshalJSON() ([]byte, error) {
	if p.Shape == nil {
		return nil, malformedf("pane %q has no shape", p.Name)
	}
	head, err := json.Marshal(struct {
		Name string   `json:"name"`
		Type PaneType `json:"type"`
	}{p.Name, p.Shape.Type()})
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(p.Shape)
	if err != nil {
		return nil, errors.Wrapf(err, "pane %q", p.Name)
	}
	if len(body) <= 2 {
		return head, nil
	}
	out := append(head[:len(head)-1], ',')
	return append(out, body[1:]...), nil
}

func (p *Pane) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return malformedf("pane at line %d is not a mapping", value.Line)
	}
	var head paneHead
	if err := value.Decode(&head); err != nil {
		return err
	}
	if head.Type == nil {
		return malformedf("pane %q: type is missing", head.Name)
	}
	body := *value
	body.Content = nil
	for i := 0; i+1 < len(value.Content); i += 2 {
		switch value.Content[i].Value {
		case "name", "type":
			continue
		}
		body.Content = append(body.Content, value.Content[i], value.Content[i+1])
	}
	shape := newPaneShape(*head.Type)
	if err := decodeStrict(&body, shape); err != nil {
		return errors.Wrapf(err, "pane %q", head.Name)
	}
	p.Name = head.Name
	p.Shape = shape
	return nil
}
