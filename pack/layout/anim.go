package layout

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/joker_tool/utils"
)

// ValueType is the animated channel of a widget
type ValueType uint8

const (
	ValueTranslateX ValueType = iota
	ValueTranslateY
	ValueTranslateZ
	ValueScaleX
	ValueScaleY
	ValueScaleZ
	ValueRotateX
	ValueRotateY
	ValueRotateZ
	ValueVisible
	ValueField24X
	ValueField24Y
	ValueField2CX
	ValueField2CY
	ValueField34
	ValueColorR
	ValueColorG
	ValueColorB
	ValueColorA
	ValueUnk
	valueTypeCount
)

var valueTypeNames = [valueTypeCount]string{
	"TranslateX", "TranslateY", "TranslateZ",
	"ScaleX", "ScaleY", "ScaleZ",
	"RotateX", "RotateY", "RotateZ",
	"Visible",
	"Field24_X", "Field24_Y", "Field2C_X", "Field2C_Y", "Field34",
	"ColorR", "ColorG", "ColorB", "ColorA",
	"Unk",
}

func (vt ValueType) Valid() bool { return vt < valueTypeCount }

func (vt ValueType) String() string {
	if vt.Valid() {
		return valueTypeNames[vt]
	}
	return "ValueType(" + strconv.Itoa(int(vt)) + ")"
}

// SampleKind returns how keyframe values of this channel are stored
func (vt ValueType) SampleKind() SampleKind {
	switch vt {
	case ValueVisible:
		return SampleUint
	case ValueUnk:
		return SampleInt
	}
	return SampleFloat
}

func (vt ValueType) MarshalText() ([]byte, error) {
	if !vt.Valid() {
		return nil, malformedf("value type %d", uint8(vt))
	}
	return []byte(vt.String()), nil
}

func (vt *ValueType) UnmarshalText(text []byte) error {
	for i, name := range valueTypeNames {
		if name == string(text) {
			*vt = ValueType(i)
			return nil
		}
	}
	if v, err := strconv.ParseUint(string(text), 0, 8); err == nil && ValueType(v).Valid() {
		*vt = ValueType(v)
		return nil
	}
	return malformedf("unknown value type %q", text)
}

// EntryKind is stored in low 2 bits of anim entry flags
type EntryKind uint8

const (
	EntryInterpolate EntryKind = iota
	EntrySet
	EntryAdd
	EntryAddPositive
)

var entryKindNames = [...]string{"Interpolate", "Set", "Add", "AddPositive"}

const entryKindMask = 3

func (k EntryKind) String() string {
	if int(k) < len(entryKindNames) {
		return entryKindNames[k]
	}
	return "EntryKind(" + strconv.Itoa(int(k)) + ")"
}

func (k EntryKind) MarshalText() ([]byte, error) {
	if int(k) >= len(entryKindNames) {
		return nil, malformedf("entry kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *EntryKind) UnmarshalText(text []byte) error {
	for i, name := range entryKindNames {
		if name == string(text) {
			*k = EntryKind(i)
			return nil
		}
	}
	if v, err := strconv.ParseUint(string(text), 0, 8); err == nil && int(v) < len(entryKindNames) {
		*k = EntryKind(v)
		return nil
	}
	return malformedf("unknown entry kind %q", text)
}

// KeyframeKind is stored in low 4 bits of keyframe flags
type KeyframeKind uint8

const (
	KeyframeNop KeyframeKind = iota
	KeyframeLerp
	KeyframeType2
	KeyframeType2R
	KeyframeSetToZero
	keyframeKindCount
)

var keyframeKindNames = [keyframeKindCount]string{"Nop", "Lerp", "Type2", "Type2R", "SetToZero"}

const keyframeKindMask = 0xf

func (k KeyframeKind) String() string {
	if k < keyframeKindCount {
		return keyframeKindNames[k]
	}
	return "KeyframeKind(" + strconv.Itoa(int(k)) + ")"
}

func (k KeyframeKind) MarshalText() ([]byte, error) {
	if k >= keyframeKindCount {
		return nil, malformedf("keyframe kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *KeyframeKind) UnmarshalText(text []byte) error {
	for i, name := range keyframeKindNames {
		if name == string(text) {
			*k = KeyframeKind(i)
			return nil
		}
	}
	if v, err := strconv.ParseUint(string(text), 0, 8); err == nil && KeyframeKind(v) < keyframeKindCount {
		*k = KeyframeKind(v)
		return nil
	}
	return malformedf("unknown keyframe kind %q", text)
}

type SampleKind uint8

const (
	SampleFloat SampleKind = iota
	SampleUint
	SampleInt
)

func (k SampleKind) String() string {
	switch k {
	case SampleFloat:
		return "float"
	case SampleUint:
		return "uint"
	case SampleInt:
		return "int"
	}
	return "SampleKind(" + strconv.Itoa(int(k)) + ")"
}

// Sample is one 4-byte keyframe value. Its kind follows the channel of owning entry.
type Sample struct {
	kind SampleKind
	bits uint32
}

func FloatSample(f float32) Sample { return Sample{kind: SampleFloat, bits: math.Float32bits(f)} }
func UintSample(u uint32) Sample   { return Sample{kind: SampleUint, bits: u} }
func IntSample(i int32) Sample     { return Sample{kind: SampleInt, bits: uint32(i)} }

func (s Sample) Kind() SampleKind { return s.kind }
func (s Sample) Float() float32   { return math.Float32frombits(s.bits) }
func (s Sample) Uint() uint32     { return s.bits }
func (s Sample) Int() int32       { return int32(s.bits) }

func (s Sample) value() interface{} {
	switch s.kind {
	case SampleUint:
		return s.Uint()
	case SampleInt:
		return s.Int()
	}
	return s.Float()
}

func (s Sample) String() string {
	switch s.kind {
	case SampleUint:
		return strconv.FormatUint(uint64(s.Uint()), 10)
	case SampleInt:
		return strconv.FormatInt(int64(s.Int()), 10)
	}
	return strconv.FormatFloat(float64(s.Float()), 'g', -1, 32)
}

func (s Sample) MarshalYAML() (interface{}, error) { return s.value(), nil }
func (s Sample) MarshalJSON() ([]byte, error)      { return json.Marshal(s.value()) }

func decodeSample(node *yaml.Node, kind SampleKind) (Sample, error) {
	if kind != SampleFloat && node.ShortTag() != "!!int" {
		return Sample{}, malformedf("%v sample expected, got %q", kind, node.Value)
	}
	switch kind {
	case SampleUint:
		var u uint32
		err := node.Decode(&u)
		return UintSample(u), err
	case SampleInt:
		var i int32
		err := node.Decode(&i)
		return IntSample(i), err
	}
	var f float32
	err := node.Decode(&f)
	return FloatSample(f), err
}

const (
	animHeaderSize  = 8
	entryHeaderSize = 0xc
	keyframeSize    = 0xc
)

type Keyframe struct {
	Frame uint32       `yaml:"frame" json:"frame"`
	Kind  KeyframeKind `yaml:"type" json:"type"`
	Flags uint16       `yaml:"flags,omitempty" json:"flags,omitempty"` // low 4 bits are ignored
	Value Sample       `yaml:"value" json:"value"`
}

// AnimEntry animates one channel of one widget.
//
// Interpolate entries carry Keyframes. Other kinds carry one float per
// frame in Values, StartFrame+1 of them.
type AnimEntry struct {
	Widget      string     `yaml:"widget" json:"widget"`
	ValueType   ValueType  `yaml:"valueType" json:"valueType"`
	Kind        EntryKind  `yaml:"type" json:"type"`
	Flags       uint16     `yaml:"flags,omitempty" json:"flags,omitempty"` // low 2 bits are ignored
	MaxFrameIdx uint32     `yaml:"maxFrameIdx" json:"maxFrameIdx"`
	Keyframes   []Keyframe `yaml:"keyframes,omitempty" json:"keyframes,omitempty"`
	Values      []float32  `yaml:"values,omitempty,flow" json:"values,omitempty"`
}

func (e *AnimEntry) UnmarshalYAML(value *yaml.Node) error {
	type keyframeDoc struct {
		Frame uint32       `yaml:"frame"`
		Kind  KeyframeKind `yaml:"type"`
		Flags uint16       `yaml:"flags"`
		Value yaml.Node    `yaml:"value"`
	}
	var doc struct {
		Widget      string        `yaml:"widget"`
		ValueType   ValueType     `yaml:"valueType"`
		Kind        EntryKind     `yaml:"type"`
		Flags       uint16        `yaml:"flags"`
		MaxFrameIdx uint32        `yaml:"maxFrameIdx"`
		Keyframes   []keyframeDoc `yaml:"keyframes"`
		Values      []float32     `yaml:"values"`
	}
	if err := decodeStrict(value, &doc); err != nil {
		return errors.Wrap(err, "anim entry")
	}
	*e = AnimEntry{
		Widget:      doc.Widget,
		ValueType:   doc.ValueType,
		Kind:        doc.Kind,
		Flags:       doc.Flags,
		MaxFrameIdx: doc.MaxFrameIdx,
		Values:      doc.Values,
	}
	for i, kd := range doc.Keyframes {
		if kd.Value.Kind == 0 {
			return malformedf("entry %q %v keyframe %d: value is missing", doc.Widget, doc.ValueType, i)
		}
		v, err := decodeSample(&kd.Value, doc.ValueType.SampleKind())
		if err != nil {
			return errors.Wrapf(err, "entry %q %v keyframe %d", doc.Widget, doc.ValueType, i)
		}
		e.Keyframes = append(e.Keyframes, Keyframe{Frame: kd.Frame, Kind: kd.Kind, Flags: kd.Flags, Value: v})
	}
	return nil
}

type Anim struct {
	Name       string       `yaml:"name" json:"name"`
	FPS        uint16       `yaml:"fps" json:"fps"`
	StartFrame uint32       `yaml:"startFrame" json:"startFrame"`
	Entries    []*AnimEntry `yaml:"entries,omitempty" json:"entries,omitempty"`
}

// animRecord is anim with entry widgets still addressed by index
type animRecord struct {
	anim      *Anim
	widgetIdx []uint16
}

func readAnim(bs *utils.BufStack, index int) (*animRecord, error) {
	numEntries := int(bs.ReadLU16())
	ar := &animRecord{anim: &Anim{}}
	ar.anim.FPS = bs.ReadLU16()
	ar.anim.StartFrame = bs.ReadLU32()
	if err := bs.Err(); err != nil {
		return nil, truncated(err, "anim %d header", index)
	}
	for i := 0; i < numEntries; i++ {
		e := &AnimEntry{}
		widgetIdx := bs.ReadLU16()
		e.ValueType = ValueType(bs.ReadU8())
		reserved := bs.ReadU8()
		numKeyframes := int(bs.ReadLU16())
		flags := bs.ReadLU16()
		e.MaxFrameIdx = bs.ReadLU32()
		if err := bs.Err(); err != nil {
			return nil, truncated(err, "anim %d entry %d header", index, i)
		}
		if !e.ValueType.Valid() {
			return nil, malformedf("anim %d entry %d: value type %d", index, i, uint8(e.ValueType))
		}
		if reserved != 0 {
			return nil, malformedf("anim %d entry %d: reserved byte is 0x%x", index, i, reserved)
		}
		e.Kind = EntryKind(flags & entryKindMask)
		e.Flags = flags &^ entryKindMask

		remaining := bs.Size() - bs.Pos()
		if e.Kind == EntryInterpolate {
			if numKeyframes*keyframeSize > remaining {
				return nil, truncated(utils.ErrOutOfBounds, "anim %d entry %d: %d keyframes", index, i, numKeyframes)
			}
			for j := 0; j < numKeyframes; j++ {
				var kf Keyframe
				if err := readKeyframe(bs, &kf, e.ValueType); err != nil {
					return nil, errors.Wrapf(err, "anim %d entry %d keyframe %d", index, i, j)
				}
				e.Keyframes = append(e.Keyframes, kf)
			}
		} else {
			count := uint64(ar.anim.StartFrame) + 1
			if count*4 > uint64(remaining) {
				return nil, truncated(utils.ErrOutOfBounds, "anim %d entry %d: %d values", index, i, count)
			}
			e.Values = make([]float32, count)
			for j := range e.Values {
				e.Values[j] = bs.ReadLF()
			}
		}
		if err := bs.Err(); err != nil {
			return nil, truncated(err, "anim %d entry %d data", index, i)
		}
		ar.anim.Entries = append(ar.anim.Entries, e)
		ar.widgetIdx = append(ar.widgetIdx, widgetIdx)
	}
	return ar, nil
}

func readKeyframe(bs *utils.BufStack, kf *Keyframe, vt ValueType) error {
	kf.Frame = bs.ReadLU32()
	flags := bs.ReadLU16()
	reserved := bs.ReadLU16()
	raw := bs.ReadLU32()
	if err := bs.Err(); err != nil {
		return truncated(err, "keyframe")
	}
	if reserved != 0 {
		return malformedf("reserved word is 0x%x", reserved)
	}
	kf.Kind = KeyframeKind(flags & keyframeKindMask)
	if kf.Kind >= keyframeKindCount {
		return malformedf("keyframe kind %d", uint8(kf.Kind))
	}
	kf.Flags = flags &^ keyframeKindMask
	kf.Value = Sample{kind: vt.SampleKind(), bits: raw}
	return nil
}

func writeAnim(bw *utils.BufWriter, a *Anim, widgetIdx []uint16) error {
	if len(a.Entries) > math.MaxUint16 {
		return malformedf("anim %q: %d entries", a.Name, len(a.Entries))
	}
	bw.W16(uint16(len(a.Entries)))
	bw.W16(a.FPS)
	bw.W32(a.StartFrame)
	for i, e := range a.Entries {
		if err := writeEntry(bw, a, e, widgetIdx[i]); err != nil {
			return errors.Wrapf(err, "anim %q entry %d", a.Name, i)
		}
	}
	return nil
}

func writeEntry(bw *utils.BufWriter, a *Anim, e *AnimEntry, widgetIdx uint16) error {
	if !e.ValueType.Valid() {
		return malformedf("value type %d", uint8(e.ValueType))
	}
	if int(e.Kind) >= len(entryKindNames) {
		return malformedf("entry kind %d", uint8(e.Kind))
	}
	numKeyframes := 0
	if e.Kind == EntryInterpolate {
		if len(e.Values) != 0 {
			return malformedf("Interpolate entry has %d per-frame values", len(e.Values))
		}
		if len(e.Keyframes) > math.MaxUint16 {
			return malformedf("%d keyframes", len(e.Keyframes))
		}
		numKeyframes = len(e.Keyframes)
	} else {
		if len(e.Keyframes) != 0 {
			return malformedf("%v entry has %d keyframes", e.Kind, len(e.Keyframes))
		}
		if uint64(len(e.Values)) != uint64(a.StartFrame)+1 {
			return malformedf("%v entry has %d values, start frame %d needs %d",
				e.Kind, len(e.Values), a.StartFrame, uint64(a.StartFrame)+1)
		}
	}

	bw.W16(widgetIdx)
	bw.W8(uint8(e.ValueType))
	bw.W8(0)
	bw.W16(uint16(numKeyframes))
	bw.W16(e.Flags&^entryKindMask | uint16(e.Kind))
	bw.W32(e.MaxFrameIdx)

	if e.Kind == EntryInterpolate {
		for j, kf := range e.Keyframes {
			if kf.Kind >= keyframeKindCount {
				return malformedf("keyframe %d kind %d", j, uint8(kf.Kind))
			}
			if kf.Value.Kind() != e.ValueType.SampleKind() {
				return malformedf("keyframe %d holds %v value, %v channel needs %v",
					j, kf.Value.Kind(), e.ValueType, e.ValueType.SampleKind())
			}
			bw.W32(kf.Frame)
			bw.W16(kf.Flags&^keyframeKindMask | uint16(kf.Kind))
			bw.W16(0)
			bw.W32(kf.Value.bits)
		}
	} else {
		for _, v := range e.Values {
			bw.WF(v)
		}
	}
	return nil
}
