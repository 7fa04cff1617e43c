// Package mfpk handles MFPK package file lists.
package mfpk

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/joker_tool/utils"
)

const (
	Magic         = "MFPK"
	FileExtension = ".mfpk"
	VersionMajor  = 3
	VersionMinor  = 0

	headerSize     = 0x10
	entryAlignment = 4
	fileAlignment  = 0x10
)

var (
	ErrBadMagic  = errors.New("bad magic")
	ErrMalformed = errors.New("malformed package")
)

type Entry struct {
	Name  string `yaml:"name" json:"name"`
	ID    uint8  `yaml:"id" json:"id"`
	X     uint16 `yaml:"x" json:"x"`
	Flags uint8  `yaml:"flags" json:"flags"`
}

type Package struct {
	Files []Entry `yaml:"files" json:"files"`
}

func Decode(data []byte) (*Package, error) {
	if len(data) < len(Magic) || string(data[:len(Magic)]) != Magic {
		return nil, errors.Wrapf(ErrBadMagic, "signature %q", data[:min(len(data), len(Magic))])
	}
	bs := utils.NewBufStack("mfpk", data)
	if major, minor := bs.LU16(4), bs.LU16(6); bs.Err() == nil && (major != VersionMajor || minor != VersionMinor) {
		return nil, errors.Wrapf(ErrBadMagic, "version %d.%d", major, minor)
	}
	numFiles := int(bs.LU16(8))
	if err := bs.Err(); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "header: %v", err)
	}

	p := &Package{}
	bs.Seek(headerSize)
	for i := 0; i < numFiles; i++ {
		var e Entry
		e.X = bs.ReadLU16()
		e.ID = bs.ReadU8()
		e.Flags = bs.ReadU8()
		e.Name = bs.ReadZString()
		if err := bs.Err(); err != nil {
			return nil, errors.Wrapf(ErrMalformed, "file %d: %v", i, err)
		}
		bs.Seek(utils.AlignUp(bs.Pos(), entryAlignment))
		p.Files = append(p.Files, e)
	}
	return p, nil
}

func Encode(p *Package) ([]byte, error) {
	if len(p.Files) > math.MaxUint16 {
		return nil, errors.Errorf("Too many files: %d", len(p.Files))
	}
	var bw utils.BufWriter
	bw.WBytes([]byte(Magic))
	bw.W16(VersionMajor)
	bw.W16(VersionMinor)
	bw.W16(uint16(len(p.Files)))
	bw.Skip(6)
	for _, e := range p.Files {
		if strings.IndexByte(e.Name, 0) >= 0 {
			return nil, errors.Errorf("File name %q contains nil byte", e.Name)
		}
		bw.W16(e.X)
		bw.W8(e.ID)
		bw.W8(e.Flags)
		bw.WZString(e.Name)
		bw.Pad(entryAlignment)
	}
	bw.Pad(fileAlignment)
	return bw.Bytes(), nil
}
