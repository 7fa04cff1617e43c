package layout

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/joker_tool/utils"
)

const (
	Magic        = "MFL "
	VersionMajor = 4
	VersionMinor = 0

	headerSize    = 0x20
	fileAlignment = 0x10
)

// header field offsets
const (
	hdrMagic          = 0x0
	hdrVersionMajor   = 0x4
	hdrVersionMinor   = 0x6
	hdrID             = 0x8
	hdrNumWidgets     = 0xa
	hdrNumMainWidgets = 0xc
	hdrNumPanes       = 0xe
	hdrNumPlayers     = 0x10
	hdrNumAnims       = 0x12
	hdrPanesOffset    = 0x14
	hdrAnimsOffset    = 0x18
	hdrNamesOffset    = 0x1c
)

// flatLayout is the file as index-addressed arrays
type flatLayout struct {
	id              uint16
	name            string
	widgets         []widgetRecord
	widgetNames     []string
	mainWidgetNames []string
	panes           []PaneShape
	paneNames       []string
	players         []string
	anims           []*animRecord
	animNames       []string
}

func decodeFlat(data []byte) (*flatLayout, error) {
	if len(data) < len(Magic) || string(data[:len(Magic)]) != Magic {
		return nil, errors.Wrapf(ErrBadMagic, "signature %q", data[:min(len(data), len(Magic))])
	}
	bs := utils.NewBufStack("mfl", data)
	if major, minor := bs.LU16(hdrVersionMajor), bs.LU16(hdrVersionMinor); bs.Err() == nil &&
		(major != VersionMajor || minor != VersionMinor) {
		return nil, errors.Wrapf(ErrBadMagic, "version %d.%d", major, minor)
	}

	fl := &flatLayout{id: bs.LU16(hdrID)}
	numWidgets := int(bs.LU16(hdrNumWidgets))
	numMainWidgets := int(bs.LU16(hdrNumMainWidgets))
	numPanes := int(bs.LU16(hdrNumPanes))
	numPlayers := int(bs.LU16(hdrNumPlayers))
	numAnims := int(bs.LU16(hdrNumAnims))
	panesOffset := int(bs.LU32(hdrPanesOffset))
	animsOffset := int(bs.LU32(hdrAnimsOffset))
	namesOffset := int(bs.LU32(hdrNamesOffset))
	if err := bs.Err(); err != nil {
		return nil, truncated(err, "header")
	}
	for _, off := range []int{panesOffset, animsOffset, namesOffset} {
		if off < headerSize || off > len(data) {
			return nil, malformedf("section offset 0x%x outside of 0x%x bytes file", off, len(data))
		}
	}

	widgets := bs.SubBuf("widgets", headerSize)
	for i := 0; i < numWidgets; i++ {
		var r widgetRecord
		r.read(widgets)
		if err := widgets.Err(); err != nil {
			return nil, truncated(err, "widget %d", i)
		}
		fl.widgets = append(fl.widgets, r)
	}

	panes := bs.SubBuf("panes", panesOffset)
	for i := 0; i < numPanes; i++ {
		shape, err := readPane(panes, i)
		if err != nil {
			return nil, err
		}
		fl.panes = append(fl.panes, shape)
	}

	anims := bs.SubBuf("anims", animsOffset)
	for i := 0; i < numAnims; i++ {
		ar, err := readAnim(anims, i)
		if err != nil {
			return nil, err
		}
		fl.anims = append(fl.anims, ar)
	}

	names := bs.SubBuf("names", namesOffset)
	readNames := func(what string, count int) ([]string, error) {
		var list []string
		for i := 0; i < count; i++ {
			list = append(list, names.ReadZString())
			if err := names.Err(); err != nil {
				return nil, truncated(err, "%s name %d", what, i)
			}
		}
		return list, nil
	}
	var err error
	if fl.name = names.ReadZString(); names.Err() != nil {
		return nil, truncated(names.Err(), "layout name")
	}
	if fl.mainWidgetNames, err = readNames("main widget", numMainWidgets); err != nil {
		return nil, err
	}
	if fl.paneNames, err = readNames("pane", numPanes); err != nil {
		return nil, err
	}
	if fl.widgetNames, err = readNames("widget", numWidgets); err != nil {
		return nil, err
	}
	if fl.players, err = readNames("player", numPlayers); err != nil {
		return nil, err
	}
	if fl.animNames, err = readNames("anim", numAnims); err != nil {
		return nil, err
	}
	return fl, nil
}

func (fl *flatLayout) encode() ([]byte, error) {
	counts := []struct {
		what string
		n    int
	}{
		{"widgets", len(fl.widgets)},
		{"main widgets", len(fl.mainWidgetNames)},
		{"panes", len(fl.panes)},
		{"players", len(fl.players)},
		{"anims", len(fl.anims)},
	}
	for _, c := range counts {
		if c.n > math.MaxUint16 {
			return nil, malformedf("%d %s do not fit 16 bit count", c.n, c.what)
		}
	}
	if len(fl.widgetNames) != len(fl.widgets) || len(fl.paneNames) != len(fl.panes) || len(fl.animNames) != len(fl.anims) {
		return nil, malformedf("name tables do not match records")
	}

	var bw utils.BufWriter
	bw.WBytes([]byte(Magic))
	bw.W16(VersionMajor)
	bw.W16(VersionMinor)
	bw.W16(fl.id)
	for _, c := range counts {
		bw.W16(uint16(c.n))
	}
	bw.Skip(12) // section offsets

	for i := range fl.widgets {
		fl.widgets[i].write(&bw)
	}

	bw.PatchU32(hdrPanesOffset, uint32(bw.Pos()))
	for i, shape := range fl.panes {
		if err := writePane(&bw, &Pane{Name: fl.paneNames[i], Shape: shape}); err != nil {
			return nil, err
		}
	}

	bw.PatchU32(hdrAnimsOffset, uint32(bw.Pos()))
	for _, ar := range fl.anims {
		if err := writeAnim(&bw, ar.anim, ar.widgetIdx); err != nil {
			return nil, err
		}
	}

	bw.PatchU32(hdrNamesOffset, uint32(bw.Pos()))
	for _, list := range [][]string{{fl.name}, fl.mainWidgetNames, fl.paneNames, fl.widgetNames, fl.players, fl.animNames} {
		for _, name := range list {
			if strings.IndexByte(name, 0) >= 0 {
				return nil, malformedf("name %q contains nil byte", name)
			}
			bw.WZString(name)
		}
	}
	bw.Pad(fileAlignment)
	return bw.Bytes(), nil
}
