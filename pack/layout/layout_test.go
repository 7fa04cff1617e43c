package layout

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/joker_tool/utils"
)

func color(r, g, b, a byte) mgl32.Vec4 {
	return utils.ColorFromBytes([4]byte{r, g, b, a})
}

func sampleLayout() *Layout {
	rect := PaneRect{Translate: mgl32.Vec3{1, 2, 3}, Width: 64, Height: 32}
	rot := PaneRotation{Rotate: mgl32.Vec2{0.5, 0}, Scale: mgl32.Vec2{1, 1}, A: 3, B: 4}
	quad := [4]mgl32.Vec4{color(255, 0, 0, 255), color(0, 255, 0, 255), color(0, 0, 255, 255), color(1, 2, 3, 4)}
	return &Layout{
		ID:          7,
		Name:        "hud",
		MainWidgets: []string{"main"},
		Players:     []string{"player0", "player1"},
		Panes: []*Pane{
			{Name: "null", Shape: &PaneNull{Translate: mgl32.Vec3{0, 0, -1}}},
			{Name: "basic", Shape: &PaneBasic{Translate: mgl32.Vec3{1, 1, 1}, ZMultiplier: 0.25}},
			{Name: "rect", Shape: &PaneRect{Translate: mgl32.Vec3{10, 20, 0}, Width: 100, Height: 50}},
			{Name: "text", Shape: &PaneText{PaneRect: rect, MsgID: 0x1234, B: 1.5, C: -2, Flags: 0x11, NumEntries: 2, X: [4]uint8{1, 2, 3, 4}}},
			{Name: "color", Shape: &PaneColor{PaneRect: rect, Color: color(128, 64, 32, 255)}},
			{Name: "quad", Shape: &PaneQuad{PaneRect: rect, Colors: quad}},
			{Name: "rotcolor", Shape: &PaneRotColor{PaneRect: rect, PaneRotation: rot, Color: color(9, 8, 7, 6)}},
			{Name: "rotquad", Shape: &PaneRotQuad{PaneRect: rect, PaneRotation: rot, Colors: quad}},
		},
		Root: &Widget{
			Name: "root", Kind: WidgetLayout, ObjectIdx: 5,
			Transform: Transform{Scale: mgl32.Vec3{1, 1, 1}, Color: color(255, 255, 255, 255)},
			Widgets: []*Widget{
				{
					Name: "group", Kind: WidgetGroup, Flags: 0x100, NumChildWidgets: 9,
					Transform: Transform{Translate: mgl32.Vec3{5, 6, 7}, X3C: 0.5},
					Widgets: []*Widget{
						{Name: "icon", Kind: WidgetPane, Pane: "rect", NumChildWidgets: 1},
						{Name: "main", Kind: WidgetMain, ObjectIdx: 0, NumChildWidgets: 3},
						{Name: "empty", Kind: WidgetGroup},
					},
				},
				{Name: "label", Kind: WidgetPane, Pane: "text", Flags: 0x2,
					Transform: Transform{X2C: mgl32.Vec2{1, 2}, X34: mgl32.Vec2{3, 4}}},
			},
		},
		Anims: []*Anim{
			{
				Name: "show", FPS: 30, StartFrame: 3,
				Entries: []*AnimEntry{
					{Widget: "group", ValueType: ValueTranslateX, Kind: EntryInterpolate, MaxFrameIdx: 10,
						Keyframes: []Keyframe{
							{Frame: 0, Kind: KeyframeLerp, Value: FloatSample(0)},
							{Frame: 10, Kind: KeyframeType2R, Flags: 0x30, Value: FloatSample(-12.5)},
						}},
					{Widget: "label", ValueType: ValueVisible, Kind: EntryInterpolate, Flags: 0x4,
						Keyframes: []Keyframe{{Frame: 2, Kind: KeyframeNop, Value: UintSample(1)}}},
					{Widget: "icon", ValueType: ValueUnk, Kind: EntryInterpolate,
						Keyframes: []Keyframe{{Frame: 1, Kind: KeyframeSetToZero, Value: IntSample(-3)}}},
					{Widget: "icon", ValueType: ValueColorA, Kind: EntrySet, MaxFrameIdx: 3,
						Values: []float32{0, 0.25, 0.5, 1}},
					{Widget: "root", ValueType: ValueScaleY, Kind: EntryAddPositive,
						Values: []float32{1, 1, 1, 1}},
				},
			},
			{Name: "idle", FPS: 60},
		},
	}
}

func mustEncode(t *testing.T, l *Layout) []byte {
	t.Helper()
	data, err := Encode(l)
	require.NoError(t, err)
	return data
}

func u16At(data []byte, off int) uint16 { return binary.LittleEndian.Uint16(data[off:]) }
func u32At(data []byte, off int) int    { return int(binary.LittleEndian.Uint32(data[off:])) }

func TestRoundTrip(t *testing.T) {
	l := sampleLayout()
	data := mustEncode(t, l)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, l, decoded)

	again := mustEncode(t, decoded)
	assert.Equal(t, data, again, "re-encoding decoded layout must be byte exact")
}

func TestHeader(t *testing.T) {
	data := mustEncode(t, sampleLayout())

	assert.Equal(t, "MFL ", string(data[:4]))
	assert.EqualValues(t, 4, u16At(data, hdrVersionMajor))
	assert.EqualValues(t, 0, u16At(data, hdrVersionMinor))
	assert.EqualValues(t, 7, u16At(data, hdrID))
	assert.EqualValues(t, 6, u16At(data, hdrNumWidgets))
	assert.EqualValues(t, 1, u16At(data, hdrNumMainWidgets))
	assert.EqualValues(t, 8, u16At(data, hdrNumPanes))
	assert.EqualValues(t, 2, u16At(data, hdrNumPlayers))
	assert.EqualValues(t, 2, u16At(data, hdrNumAnims))
	assert.Equal(t, headerSize+6*widgetRecordSize, u32At(data, hdrPanesOffset))
	assert.Zero(t, len(data)%fileAlignment)

	// root is Layout widget with two children
	assert.EqualValues(t, uint32(WidgetLayout)<<4, binary.LittleEndian.Uint32(data[headerSize:]))
	assert.EqualValues(t, 5, u16At(data, headerSize+4))
	assert.EqualValues(t, 2, u16At(data, headerSize+6))
	// group keeps child count in object index slot
	assert.EqualValues(t, 3, u16At(data, headerSize+widgetRecordSize+4))

	names := data[u32At(data, hdrNamesOffset):]
	expected := "hud\x00main\x00null\x00basic\x00rect\x00text\x00color\x00quad\x00rotcolor\x00rotquad\x00" +
		"root\x00group\x00icon\x00main\x00empty\x00label\x00player0\x00player1\x00show\x00idle\x00"
	assert.Equal(t, expected, string(names[:len(expected)]))
	assert.Equal(t, make([]byte, len(names)-len(expected)), names[len(expected):])
}

func TestPaneRecordSizes(t *testing.T) {
	for _, test := range []struct {
		shape PaneShape
		size  int
	}{
		{&PaneNull{}, 0xc},
		{&PaneBasic{}, 0x10},
		{&PaneRect{}, 0x14},
		{&PaneText{}, 0x28},
		{&PaneColor{}, 0x18},
		{&PaneQuad{}, 0x24},
		{&PaneRotColor{}, 0x2c},
		{&PaneRotQuad{}, 0x38},
	} {
		t.Run(test.shape.Type().String(), func(t *testing.T) {
			assert.Equal(t, test.size, test.shape.Type().PayloadSize())

			l := &Layout{Panes: []*Pane{{Name: "p", Shape: test.shape}}}
			data := mustEncode(t, l)
			panesOffset := u32At(data, hdrPanesOffset)
			assert.EqualValues(t, test.shape.Type(), u16At(data, panesOffset))
			assert.EqualValues(t, test.size, u16At(data, panesOffset+2))
			assert.Equal(t, panesOffset+4+test.size, u32At(data, hdrAnimsOffset))

			decoded, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, l.Panes, decoded.Panes)
		})
	}
}

func TestRectPaneBytes(t *testing.T) {
	l := &Layout{Panes: []*Pane{{Name: "r", Shape: &PaneRect{Translate: mgl32.Vec3{1, 2, 3}, Width: 4, Height: 5}}}}
	data := mustEncode(t, l)
	off := u32At(data, hdrPanesOffset)
	expected := []byte{
		2, 0, 0x14, 0,
		0, 0, 0x80, 0x3f, 0, 0, 0, 0x40, 0, 0, 0x40, 0x40,
		0, 0, 0x80, 0x40,
		0, 0, 0xa0, 0x40,
	}
	assert.Equal(t, expected, data[off:off+len(expected)])
}

func TestPaneRecordSkipsGap(t *testing.T) {
	l := &Layout{Panes: []*Pane{
		{Name: "a", Shape: &PaneNull{Translate: mgl32.Vec3{1, 1, 1}}},
	}}
	data := mustEncode(t, l)
	off := u32At(data, hdrPanesOffset)

	// grow first record by 4 bytes of gap and shift everything after it
	gapped := append([]byte{}, data[:off+4+0xc]...)
	gapped = append(gapped, 0xaa, 0xbb, 0xcc, 0xdd)
	gapped = append(gapped, data[off+4+0xc:]...)
	binary.LittleEndian.PutUint16(gapped[off+2:], 0x10)
	binary.LittleEndian.PutUint32(gapped[hdrAnimsOffset:], uint32(u32At(data, hdrAnimsOffset)+4))
	binary.LittleEndian.PutUint32(gapped[hdrNamesOffset:], uint32(u32At(data, hdrNamesOffset)+4))

	decoded, err := Decode(gapped)
	require.NoError(t, err)
	assert.Equal(t, l.Panes, decoded.Panes)
}

func TestSetEntryStoresFloatPerFrame(t *testing.T) {
	l := &Layout{
		Root: &Widget{Name: "w", Kind: WidgetMain},
		Anims: []*Anim{{Name: "a", StartFrame: 3, Entries: []*AnimEntry{
			{Widget: "w", ValueType: ValueTranslateY, Kind: EntrySet, Values: []float32{1, 2, 3, 4}},
		}}},
	}
	data := mustEncode(t, l)
	animsOffset := u32At(data, hdrAnimsOffset)
	assert.Equal(t, animHeaderSize+entryHeaderSize+4*4, u32At(data, hdrNamesOffset)-animsOffset)
	entry := animsOffset + animHeaderSize
	assert.EqualValues(t, 0, u16At(data, entry+4), "numKeyframes")
	assert.EqualValues(t, EntrySet, u16At(data, entry+6))

	l.Anims[0].Entries[0].Values = l.Anims[0].Entries[0].Values[:3]
	_, err := Encode(l)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestKindBitsAreOwnedByKind(t *testing.T) {
	l := &Layout{
		Root: &Widget{Name: "w", Kind: WidgetMain, Flags: 0x30 | 0x1},
		Anims: []*Anim{{Name: "a", Entries: []*AnimEntry{
			{Widget: "w", Kind: EntryAdd, Flags: 0x3 | 0x8, Values: []float32{1}},
			{Widget: "w", Kind: EntryInterpolate, Keyframes: []Keyframe{{Kind: KeyframeLerp, Flags: 0xff}}},
		}}},
	}
	decoded, err := Decode(mustEncode(t, l))
	require.NoError(t, err)

	assert.Equal(t, WidgetMain, decoded.Root.Kind)
	assert.EqualValues(t, 0x1, decoded.Root.Flags)
	assert.Equal(t, EntryAdd, decoded.Anims[0].Entries[0].Kind)
	assert.EqualValues(t, 0x8, decoded.Anims[0].Entries[0].Flags)
	assert.Equal(t, KeyframeLerp, decoded.Anims[0].Entries[1].Keyframes[0].Kind)
	assert.EqualValues(t, 0xf0, decoded.Anims[0].Entries[1].Keyframes[0].Flags)
}

func TestNonInterpolateIgnoresKeyframeCount(t *testing.T) {
	l := &Layout{
		Root: &Widget{Name: "w", Kind: WidgetMain},
		Anims: []*Anim{{Name: "a", StartFrame: 1, Entries: []*AnimEntry{
			{Widget: "w", Kind: EntrySet, Values: []float32{1, 2}},
		}}},
	}
	data := mustEncode(t, l)
	binary.LittleEndian.PutUint16(data[u32At(data, hdrAnimsOffset)+animHeaderSize+4:], 40)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, l.Anims, decoded.Anims)
}

func TestEmptyLayout(t *testing.T) {
	l := &Layout{Name: "empty"}
	data := mustEncode(t, l)
	assert.Len(t, data, 0x30)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, l, decoded)
	assert.Nil(t, decoded.Widgets())
}

func TestBadMagic(t *testing.T) {
	data := mustEncode(t, sampleLayout())

	for name, mutate := range map[string]func([]byte) []byte{
		"signature": func(b []byte) []byte { b[3] = '!'; return b },
		"major":     func(b []byte) []byte { b[hdrVersionMajor] = 3; return b },
		"minor":     func(b []byte) []byte { b[hdrVersionMinor] = 1; return b },
		"short":     func(b []byte) []byte { return b[:2] },
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(mutate(append([]byte{}, data...)))
			assert.ErrorIs(t, err, ErrBadMagic)
		})
	}
}

func TestTruncated(t *testing.T) {
	data := mustEncode(t, sampleLayout())
	panesOffset := u32At(data, hdrPanesOffset)
	animsOffset := u32At(data, hdrAnimsOffset)
	namesOffset := u32At(data, hdrNamesOffset)

	for _, size := range []int{
		0x10,
		headerSize + widgetRecordSize,
		panesOffset + 2,
		animsOffset + 6,
		animsOffset + animHeaderSize + entryHeaderSize + 4,
		namesOffset + 1,
		namesOffset + 20,
	} {
		_, err := Decode(data[:size])
		assert.ErrorIs(t, err, ErrMalformedRecord, "size 0x%x", size)
	}
}

func TestSectionOffsetOutOfBounds(t *testing.T) {
	data := mustEncode(t, sampleLayout())
	binary.LittleEndian.PutUint32(data[hdrAnimsOffset:], uint32(len(data)+1))
	_, err := Decode(data)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestUnknownPaneTag(t *testing.T) {
	data := mustEncode(t, sampleLayout())
	binary.LittleEndian.PutUint16(data[u32At(data, hdrPanesOffset):], 8)
	_, err := Decode(data)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestHugeStartFrameIsMalformed(t *testing.T) {
	l := &Layout{
		Root: &Widget{Name: "w", Kind: WidgetMain},
		Anims: []*Anim{{Name: "a", Entries: []*AnimEntry{
			{Widget: "w", Kind: EntrySet, Values: []float32{1}},
		}}},
	}
	data := mustEncode(t, l)
	binary.LittleEndian.PutUint32(data[u32At(data, hdrAnimsOffset)+4:], 0xffffffff)
	_, err := Decode(data)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestEntryTagsAreChecked(t *testing.T) {
	l := &Layout{
		Root: &Widget{Name: "w", Kind: WidgetMain},
		Anims: []*Anim{{Name: "a", Entries: []*AnimEntry{
			{Widget: "w", ValueType: ValueRotateZ, Kind: EntryInterpolate, Keyframes: []Keyframe{
				{Frame: 4, Kind: KeyframeLerp, Flags: 0x10, Value: FloatSample(2)},
			}},
		}}},
	}
	data := mustEncode(t, l)
	entry := u32At(data, hdrAnimsOffset) + animHeaderSize
	keyframe := entry + entryHeaderSize
	require.EqualValues(t, ValueRotateZ, data[entry+2])
	require.EqualValues(t, 0x10|uint16(KeyframeLerp), u16At(data, keyframe+4))

	for _, test := range []struct {
		name  string
		patch func(b []byte)
	}{
		{"value type 20", func(b []byte) { b[entry+2] = 20 }},
		{"value type 255", func(b []byte) { b[entry+2] = 0xff }},
		{"reserved entry byte", func(b []byte) { b[entry+3] = 1 }},
		{"keyframe kind 5", func(b []byte) { binary.LittleEndian.PutUint16(b[keyframe+4:], 0x10|5) }},
		{"keyframe kind 7", func(b []byte) { binary.LittleEndian.PutUint16(b[keyframe+4:], 7) }},
		{"keyframe kind 15", func(b []byte) { binary.LittleEndian.PutUint16(b[keyframe+4:], 0xf) }},
		{"reserved keyframe word", func(b []byte) { binary.LittleEndian.PutUint16(b[keyframe+6:], 1) }},
	} {
		t.Run(test.name, func(t *testing.T) {
			broken := append([]byte{}, data...)
			test.patch(broken)
			_, err := Decode(broken)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, l, decoded)
}

func childCountLayout() *Layout {
	return &Layout{
		Root: &Widget{Name: "root", Kind: WidgetGroup, Widgets: []*Widget{
			{Name: "a", Kind: WidgetMain},
			{Name: "b", Kind: WidgetMain},
		}},
	}
}

func TestChildCountMismatch(t *testing.T) {
	data := mustEncode(t, childCountLayout())
	countOffset := headerSize + 4
	require.EqualValues(t, 2, u16At(data, countOffset))

	for _, count := range []uint16{0, 1, 3} {
		broken := append([]byte{}, data...)
		binary.LittleEndian.PutUint16(broken[countOffset:], count)
		_, err := Decode(broken)
		assert.ErrorIs(t, err, ErrMalformedRecord, "declared %d children", count)
	}

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "root", decoded.Root.Name)
	assert.Len(t, decoded.Root.Widgets, 2)
}

func TestDuplicateNames(t *testing.T) {
	t.Run("encode widgets", func(t *testing.T) {
		l := childCountLayout()
		l.Root.Widgets[1].Name = "a"
		_, err := Encode(l)
		assert.ErrorIs(t, err, ErrDuplicateName)
	})
	t.Run("encode panes", func(t *testing.T) {
		l := sampleLayout()
		l.Panes[1].Name = l.Panes[0].Name
		_, err := Encode(l)
		assert.ErrorIs(t, err, ErrDuplicateName)
	})
	t.Run("decode widgets", func(t *testing.T) {
		l := childCountLayout()
		l.Root.Widgets[1].Name = "wz"
		l.Root.Widgets[0].Name = "wy"
		data := mustEncode(t, l)
		i := bytes.Index(data, []byte("wz\x00"))
		require.True(t, i > 0)
		data[i+1] = 'y'
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrDuplicateName)
	})
}

func TestUnresolvedReferences(t *testing.T) {
	t.Run("pane name", func(t *testing.T) {
		l := sampleLayout()
		l.Root.Widgets[1].Pane = "missing"
		_, err := Encode(l)
		assert.ErrorIs(t, err, ErrUnresolvedReference)
	})
	t.Run("entry widget", func(t *testing.T) {
		l := sampleLayout()
		l.Anims[0].Entries[2].Widget = "missing"
		_, err := Encode(l)
		assert.ErrorIs(t, err, ErrUnresolvedReference)
	})
	t.Run("pane index", func(t *testing.T) {
		l := &Layout{
			Panes: []*Pane{{Name: "p", Shape: &PaneNull{}}},
			Root:  &Widget{Name: "w", Kind: WidgetPane, Pane: "p"},
		}
		data := mustEncode(t, l)
		binary.LittleEndian.PutUint16(data[headerSize+4:], 1)
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrUnresolvedReference)
	})
	t.Run("entry widget index", func(t *testing.T) {
		l := &Layout{
			Root: &Widget{Name: "w", Kind: WidgetMain},
			Anims: []*Anim{{Name: "a", Entries: []*AnimEntry{
				{Widget: "w", Kind: EntryInterpolate},
			}}},
		}
		data := mustEncode(t, l)
		binary.LittleEndian.PutUint16(data[u32At(data, hdrAnimsOffset)+animHeaderSize:], 1)
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrUnresolvedReference)
	})
}

func TestInvalidTrees(t *testing.T) {
	for name, l := range map[string]*Layout{
		"pane widget with children": {
			Panes: []*Pane{{Name: "p", Shape: &PaneNull{}}},
			Root: &Widget{Name: "w", Kind: WidgetPane, Pane: "p", Widgets: []*Widget{
				{Name: "c", Kind: WidgetMain},
			}},
		},
		"main widget with children": {
			Root: &Widget{Name: "w", Kind: WidgetMain, Widgets: []*Widget{{Name: "c", Kind: WidgetMain}}},
		},
		"pane ref on group": {
			Panes: []*Pane{{Name: "p", Shape: &PaneNull{}}},
			Root:  &Widget{Name: "w", Kind: WidgetGroup, Pane: "p"},
		},
		"pane without shape": {
			Panes: []*Pane{{Name: "p"}},
		},
		"keyframe value kind": {
			Root: &Widget{Name: "w", Kind: WidgetMain},
			Anims: []*Anim{{Name: "a", Entries: []*AnimEntry{
				{Widget: "w", ValueType: ValueVisible, Kind: EntryInterpolate,
					Keyframes: []Keyframe{{Value: FloatSample(1)}}},
			}}},
		},
		"values on interpolate entry": {
			Root: &Widget{Name: "w", Kind: WidgetMain},
			Anims: []*Anim{{Name: "a", Entries: []*AnimEntry{
				{Widget: "w", Kind: EntryInterpolate, Values: []float32{1}},
			}}},
		},
		"name with nil byte": {
			Name: "a\x00b",
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Encode(l)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func randomShape(r *rand.Rand) PaneShape {
	shape := newPaneShape(PaneType(r.Intn(int(paneTypeCount))))
	rect := PaneRect{
		Translate: mgl32.Vec3{float32(r.Intn(640)), float32(r.Intn(480)), 0},
		Width:     float32(r.Intn(100)), Height: float32(r.Intn(100)),
	}
	c := color(byte(r.Intn(256)), byte(r.Intn(256)), byte(r.Intn(256)), byte(r.Intn(256)))
	switch s := shape.(type) {
	case *PaneNull:
		s.Translate = rect.Translate
	case *PaneBasic:
		s.Translate, s.ZMultiplier = rect.Translate, r.Float32()
	case *PaneRect:
		*s = rect
	case *PaneText:
		s.PaneRect, s.MsgID = rect, r.Uint32()
	case *PaneColor:
		s.PaneRect, s.Color = rect, c
	case *PaneQuad:
		s.PaneRect, s.Colors[r.Intn(4)] = rect, c
	case *PaneRotColor:
		s.PaneRect, s.Color, s.A = rect, c, uint16(r.Intn(0x10000))
	case *PaneRotQuad:
		s.PaneRect, s.Colors[r.Intn(4)], s.B = rect, c, uint16(r.Intn(0x10000))
	}
	return shape
}

func randomLayout(r *rand.Rand) *Layout {
	var rng utils.RandomNameGenerator
	l := &Layout{ID: uint16(r.Intn(0x10000)), Name: rng.RandomName()}
	for i := r.Intn(8); i >= 0; i-- {
		l.Panes = append(l.Panes, &Pane{Name: rng.RandomName(), Shape: randomShape(r)})
	}

	var widgets []*Widget
	var gen func(depth int) *Widget
	gen = func(depth int) *Widget {
		w := &Widget{
			Name:  rng.RandomName(),
			Kind:  WidgetKind(r.Intn(4)),
			Flags: uint32(r.Intn(0x10000)) &^ widgetKindMask,
			Transform: Transform{
				Translate: mgl32.Vec3{float32(r.Intn(100)), float32(r.Intn(100)), 0},
				Scale:     mgl32.Vec3{1, 1, 1},
				Color:     color(255, 255, 255, byte(r.Intn(256))),
			},
		}
		if depth == 0 {
			w.Kind = WidgetLayout
		}
		widgets = append(widgets, w)
		switch w.Kind {
		case WidgetGroup, WidgetLayout:
			if w.Kind == WidgetLayout {
				w.ObjectIdx = uint16(r.Intn(10))
			} else {
				w.NumChildWidgets = uint16(r.Intn(10))
			}
			if depth < 4 {
				for i := r.Intn(4); i > 0; i-- {
					w.Widgets = append(w.Widgets, gen(depth+1))
				}
			}
		case WidgetMain:
			w.ObjectIdx = uint16(r.Intn(10))
			l.MainWidgets = append(l.MainWidgets, w.Name)
		case WidgetPane:
			w.Pane = l.Panes[r.Intn(len(l.Panes))].Name
		}
		return w
	}
	l.Root = gen(0)

	for i := r.Intn(3); i > 0; i-- {
		a := &Anim{Name: rng.RandomName(), FPS: 30, StartFrame: uint32(r.Intn(5))}
		for j := r.Intn(5); j > 0; j-- {
			e := &AnimEntry{
				Widget:    widgets[r.Intn(len(widgets))].Name,
				ValueType: ValueType(r.Intn(int(valueTypeCount))),
				Kind:      EntryKind(r.Intn(4)),
			}
			if e.Kind == EntryInterpolate {
				for k := r.Intn(4); k > 0; k-- {
					kf := Keyframe{Frame: uint32(k), Kind: KeyframeKind(r.Intn(int(keyframeKindCount)))}
					switch e.ValueType.SampleKind() {
					case SampleUint:
						kf.Value = UintSample(uint32(r.Intn(2)))
					case SampleInt:
						kf.Value = IntSample(int32(r.Intn(200) - 100))
					default:
						kf.Value = FloatSample(r.Float32())
					}
					e.Keyframes = append(e.Keyframes, kf)
				}
			} else {
				for k := uint32(0); k <= a.StartFrame; k++ {
					e.Values = append(e.Values, r.Float32())
				}
			}
			a.Entries = append(a.Entries, e)
		}
		l.Anims = append(l.Anims, a)
	}
	return l
}

func TestRandomLayoutsRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		l := randomLayout(r)
		data, err := Encode(l)
		require.NoError(t, err, "layout %d", i)

		decoded, err := Decode(data)
		require.NoError(t, err, "layout %d", i)
		require.Equal(t, l, decoded, "layout %d", i)
		require.Equal(t, len(l.Widgets()), int(u16At(data, hdrNumWidgets)))

		again, err := Encode(decoded)
		require.NoError(t, err)
		require.Equal(t, data, again, "layout %d", i)
	}
}

func TestWidgetsPreOrder(t *testing.T) {
	var names []string
	for _, w := range sampleLayout().Widgets() {
		names = append(names, w.Name)
	}
	assert.Equal(t, []string{"root", "group", "icon", "main", "empty", "label"}, names)

	l := sampleLayout()
	assert.Equal(t, "text", l.Root.Find("label").Pane)
	assert.Nil(t, l.Root.Find("nope"))
	assert.NotNil(t, l.Pane("quad"))
	assert.NotNil(t, l.Anim("idle"))
}
