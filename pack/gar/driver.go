package gar

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mogaika/joker_tool/vfs"
)

// Driver exposes archive stored in file f as vfs.Directory.
// Writing a member repacks whole archive back into f.
type Driver struct {
	f  vfs.File
	mu sync.Mutex
	a  *Archive
}

func NewDriver(f vfs.File) (*Driver, error) {
	data, err := vfs.ReadFile(f)
	if err != nil {
		return nil, err
	}
	a, err := Open(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open archive '%s'", f.Name())
	}
	log.Debug().Str("archive", f.Name()).Int("files", len(a.files)).Int("types", len(a.types)).Msg("Opened archive")
	return &Driver{f: f, a: a}, nil
}

func (d *Driver) Archive() *Archive {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.a
}

func (d *Driver) Name() string      { return d.f.Name() }
func (d *Driver) IsDirectory() bool { return true }

func (d *Driver) List() ([]string, error) {
	return d.Archive().Names(), nil
}

func (d *Driver) GetElement(name string) (vfs.Element, error) {
	if d.Archive().File(name) == nil {
		return nil, errors.Wrapf(os.ErrNotExist, "'%s' in archive '%s'", name, d.Name())
	}
	return &driverFile{d: d, name: name}, nil
}

func (d *Driver) replace(name string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	w := d.a.Repack()
	if err := w.Replace(name, data); err != nil {
		return err
	}
	packed, err := w.Bytes()
	if err != nil {
		return err
	}
	a, err := Open(packed)
	if err != nil {
		return errors.Wrap(err, "Repacked archive is broken")
	}
	if err := vfs.WriteFile(d.f, packed); err != nil {
		return err
	}
	d.a = a
	log.Info().Str("archive", d.f.Name()).Str("file", name).Int("size", len(data)).
		Int("alignment", w.Alignment()).Msg("Repacked archive")
	return nil
}

type driverFile struct {
	d    *Driver
	name string
	r    *io.SectionReader
}

func (f *driverFile) Name() string      { return f.name }
func (f *driverFile) IsDirectory() bool { return false }

func (f *driverFile) data() []byte {
	if af := f.d.Archive().File(f.name); af != nil {
		return af.Data
	}
	return nil
}

func (f *driverFile) Size() int64 { return int64(len(f.data())) }

func (f *driverFile) Open(readonly bool) error {
	if f.r != nil {
		return errors.New("File already opened")
	}
	if readonly {
		data := f.data()
		f.r = io.NewSectionReader(bytes.NewReader(data), 0, int64(len(data)))
	}
	return nil
}

func (f *driverFile) Close() error {
	f.r = nil
	return nil
}

func (f *driverFile) Reader() (*io.SectionReader, error) {
	if f.r == nil {
		return nil, errors.New("First you need to open file")
	}
	return f.r, nil
}

func (f *driverFile) Copy(src io.Reader) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	return f.d.replace(f.name, data)
}
