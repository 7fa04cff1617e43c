package gar

import (
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/mogaika/joker_tool/utils"
)

// Writer builds archive. Files keep order they were added in.
type Writer struct {
	files     []*File
	alignment int
}

func NewWriter() *Writer {
	return &Writer{alignment: DefaultAlignment}
}

// SetAlignment sets data alignment of every file, must be power of two
func (w *Writer) SetAlignment(alignment int) error {
	if alignment <= 0 || alignment&(alignment-1) != 0 {
		return errors.Errorf("Alignment must be power of two, got %d", alignment)
	}
	w.alignment = alignment
	return nil
}

func (w *Writer) Alignment() int { return w.alignment }

func (w *Writer) Add(name string, data []byte) error {
	if name == "" {
		return errors.New("Empty file name")
	}
	for _, f := range w.files {
		if f.Name == name {
			return errors.Errorf("Duplicate file name %q", name)
		}
	}
	w.files = append(w.files, &File{Name: name, Data: data})
	return nil
}

// Replace changes data of already added file
func (w *Writer) Replace(name string, data []byte) error {
	for _, f := range w.files {
		if f.Name == name {
			f.Data = data
			return nil
		}
	}
	return errors.Errorf("File %q not found", name)
}

// types returns unknown type first, then other types in order of first file of type
func (w *Writer) types() []Type {
	types := []Type{{Name: UnknownType}}
	index := map[string]int{UnknownType: 0}
	for i, f := range w.files {
		t := f.Type()
		ti, ok := index[t]
		if !ok {
			ti = len(types)
			index[t] = ti
			types = append(types, Type{Name: t})
		}
		types[ti].Files = append(types[ti].Files, i)
	}
	return types
}

func (w *Writer) Bytes() ([]byte, error) {
	if len(w.files) > math.MaxUint16 {
		return nil, errors.Errorf("Too many files: %d", len(w.files))
	}
	types := w.types()
	var bw utils.BufWriter
	bw.Skip(headerSize)

	typesOffset := bw.Pos()
	for _, t := range types {
		bw.W32(uint32(len(t.Files)))
		bw.W32(0xffffffff) // file indices offset
		bw.W32(0xffffffff) // name offset
		bw.W32(0xffffffff)
	}
	for i, t := range types {
		entry := typesOffset + i*typeEntrySize
		if len(t.Files) != 0 {
			bw.PatchU32(entry+4, uint32(bw.Pos()))
			for _, idx := range t.Files {
				bw.W32(uint32(idx))
			}
		}
		bw.PatchU32(entry+8, uint32(bw.Pos()))
		if err := writeName(&bw, t.Name); err != nil {
			return nil, err
		}
		bw.Pad(4)
	}

	infoOffset := bw.Pos()
	for _, f := range w.files {
		bw.W32(uint32(len(f.Data)))
		bw.W32(0xffffffff) // stem offset
		bw.W32(0xffffffff) // name offset
	}
	for i, f := range w.files {
		entry := infoOffset + i*fileInfoEntrySize
		bw.PatchU32(entry+8, uint32(bw.Pos()))
		if err := writeName(&bw, f.Name); err != nil {
			return nil, err
		}
		bw.PatchU32(entry+4, uint32(bw.Pos()))
		if err := writeName(&bw, f.Stem()); err != nil {
			return nil, err
		}
		bw.Pad(4)
	}

	dataOffsetsOffset := bw.Pos()
	bw.Skip(4 * len(w.files))
	for i, f := range w.files {
		bw.Pad(w.alignment)
		bw.PatchU32(dataOffsetsOffset+i*4, uint32(bw.Pos()))
		bw.WBytes(f.Data)
	}
	if uint64(bw.Pos()) > math.MaxUint32 {
		return nil, errors.Errorf("Archive is too big: 0x%x bytes", bw.Pos())
	}

	data := bw.Bytes()
	var hdr utils.BufWriter
	hdr.WBytes([]byte(Magic))
	hdr.W32(uint32(len(data)))
	hdr.W16(uint16(len(types)))
	hdr.W16(uint16(len(w.files)))
	hdr.W32(uint32(typesOffset))
	hdr.W32(uint32(infoOffset))
	hdr.W32(uint32(dataOffsetsOffset))
	hdr.WBytes([]byte(Creator))
	hdr.Pad(headerSize)
	copy(data, hdr.Bytes())
	return data, nil
}

func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	data, err := w.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := out.Write(data)
	return int64(n), err
}

func writeName(bw *utils.BufWriter, name string) error {
	raw, err := utils.StringToBytes(name, true)
	if err != nil {
		return err
	}
	bw.WBytes(raw)
	return nil
}

// Repack returns writer with all files of archive
func (a *Archive) Repack() *Writer {
	w := NewWriter()
	// largest power of two dividing every offset
	align := a.GuessAlignment()
	w.alignment = align & -align
	for _, f := range a.files {
		w.files = append(w.files, &File{Name: f.Name, Data: f.Data})
	}
	return w
}
