// Package gar reads and writes GAR v2 archives.
package gar

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/joker_tool/utils"
)

const (
	Magic         = "GAR\x02"
	Creator       = "jenkins"
	FileExtension = ".gar"

	// UnknownType is always the first type of archives we write
	UnknownType = "unknown"

	headerSize        = 0x20
	typeEntrySize     = 0x10
	fileInfoEntrySize = 0xc

	DefaultAlignment = 4
)

var (
	ErrBadMagic  = errors.New("bad magic")
	ErrMalformed = errors.New("malformed archive")
)

type File struct {
	Name string
	// Offset of data inside archive, zero for files not read from archive
	Offset int
	Data   []byte
}

// Stem is name up to first dot
func (f *File) Stem() string {
	return nameStem(f.Name)
}

// Type is extension between first and second dots
func (f *File) Type() string {
	return nameType(f.Name)
}

func nameStem(name string) string {
	stem, _, _ := strings.Cut(name, ".")
	return stem
}

func nameType(name string) string {
	_, ext, found := strings.Cut(name, ".")
	if !found {
		return UnknownType
	}
	ext, _, _ = strings.Cut(ext, ".")
	return ext
}

type Type struct {
	Name  string
	Files []int
}

type Archive struct {
	Creator string
	types   []Type
	files   []*File
}

func (a *Archive) Files() []*File { return a.files }
func (a *Archive) Types() []Type  { return a.types }

func (a *Archive) File(name string) *File {
	for _, f := range a.files {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (a *Archive) Names() []string {
	names := make([]string, len(a.files))
	for i, f := range a.files {
		names[i] = f.Name
	}
	return names
}

// GuessAlignment returns greatest common divisor of data offsets
func (a *Archive) GuessAlignment() int {
	if len(a.files) <= 2 {
		return DefaultAlignment
	}
	gcd := a.files[0].Offset
	for _, f := range a.files[1:] {
		x, y := gcd, f.Offset
		for y != 0 {
			x, y = y, x%y
		}
		gcd = x
	}
	if gcd == 0 {
		return DefaultAlignment
	}
	return gcd
}

// Open parses archive. Files data slices point into data.
func Open(data []byte) (*Archive, error) {
	if len(data) < len(Magic) || string(data[:len(Magic)]) != Magic {
		return nil, errors.Wrapf(ErrBadMagic, "signature %q", data[:min(len(data), len(Magic))])
	}
	if len(data) < headerSize {
		return nil, errors.Wrapf(ErrMalformed, "0x%x bytes is less than header", len(data))
	}
	bs := utils.NewBufStack("gar", data)
	numTypes := int(bs.LU16(0x8))
	numFiles := int(bs.LU16(0xa))
	typesOffset := int(bs.LU32(0xc))
	infoOffset := int(bs.LU32(0x10))
	dataOffsetsOffset := int(bs.LU32(0x14))
	creator := data[0x18:headerSize]

	a := &Archive{}
	var err error
	if a.Creator, err = utils.BytesToString(creator); err != nil {
		return nil, err
	}

	readName := func(off int, what string) (string, error) {
		raw := bs.ZStringAt(off)
		if err := bs.Err(); err != nil {
			return "", errors.Wrapf(ErrMalformed, "%s name: %v", what, err)
		}
		return utils.BytesToString([]byte(raw))
	}

	a.files = make([]*File, 0, min(numFiles, len(data)/fileInfoEntrySize))
	for i := 0; i < numFiles; i++ {
		entry := infoOffset + i*fileInfoEntrySize
		size := int(bs.LU32(entry))
		nameOffset := int(bs.LU32(entry + 8))
		dataOffset := int(bs.LU32(dataOffsetsOffset + i*4))
		if err := bs.Err(); err != nil {
			return nil, errors.Wrapf(ErrMalformed, "file %d entry: %v", i, err)
		}
		name, err := readName(nameOffset, "file")
		if err != nil {
			return nil, errors.Wrapf(err, "file %d", i)
		}
		if dataOffset > len(data) || size > len(data)-dataOffset {
			return nil, errors.Wrapf(ErrMalformed, "file %q: 0x%x bytes at 0x%x outside of 0x%x archive",
				name, size, dataOffset, len(data))
		}
		a.files = append(a.files, &File{
			Name:   name,
			Offset: dataOffset,
			Data:   data[dataOffset : dataOffset+size],
		})
	}

	for i := 0; i < numTypes; i++ {
		entry := typesOffset + i*typeEntrySize
		count := int(bs.LU32(entry))
		indicesOffset := int(bs.LU32(entry + 4))
		nameOffset := int(bs.LU32(entry + 8))
		if err := bs.Err(); err != nil {
			return nil, errors.Wrapf(ErrMalformed, "type %d entry: %v", i, err)
		}
		name, err := readName(nameOffset, "type")
		if err != nil {
			return nil, errors.Wrapf(err, "type %d", i)
		}
		t := Type{Name: name}
		for j := 0; j < count; j++ {
			idx := int(bs.LU32(indicesOffset + j*4))
			if err := bs.Err(); err != nil {
				return nil, errors.Wrapf(ErrMalformed, "type %q file list: %v", name, err)
			}
			if idx >= len(a.files) {
				return nil, errors.Wrapf(ErrMalformed, "type %q refers to file %d of %d", name, idx, len(a.files))
			}
			t.Files = append(t.Files, idx)
		}
		a.types = append(a.types, t)
	}
	return a, nil
}
