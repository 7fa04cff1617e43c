// Package mfpj handles MFPJ project files listing packages, layouts and resource extensions.
//
// Documents hold only the name tables and the opaque header words. Counts,
// version and names offset are derived on encode and are not document keys.
// Package and layout items may be written as plain names or as {id, name}
// records, id being the item position.
package mfpj

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/joker_tool/utils"
)

const (
	Magic         = "MFPJ"
	FileExtension = ".mfpj"
	VersionMajor  = 3
	VersionMinor  = 0

	headerSize    = 0x30
	fileAlignment = 0x10
)

var (
	ErrBadMagic  = errors.New("bad magic")
	ErrMalformed = errors.New("malformed project")
)

type Project struct {
	Packages     NameList  `yaml:"packages" json:"packages"`
	Layouts      NameList  `yaml:"layouts" json:"layouts"`
	ResourceExts []string  `yaml:"resourceExts" json:"resourceExts"`
	Unk1         [3]uint32 `yaml:"unk1,flow" json:"unk1"`
	NumTextures  uint32    `yaml:"numTextures" json:"numTextures"`
	Unk2         [3]uint32 `yaml:"unk2,flow" json:"unk2"`
}

// NameList is a name table, its index is the id of the item
type NameList []string

func (l *NameList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return errors.Errorf("line %d: name list expected", value.Line)
	}
	var names NameList
	for i, item := range value.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			var name string
			if err := item.Decode(&name); err != nil {
				return err
			}
			names = append(names, name)
		case yaml.MappingNode:
			var name *string
			for j := 0; j+1 < len(item.Content); j += 2 {
				key, val := item.Content[j], item.Content[j+1]
				switch key.Value {
				case "id":
					var id int
					if err := val.Decode(&id); err != nil {
						return err
					}
					if id != i {
						return errors.Errorf("line %d: item %d has id %d", key.Line, i, id)
					}
				case "name":
					name = new(string)
					if err := val.Decode(name); err != nil {
						return err
					}
				default:
					return errors.Errorf("line %d: unknown key %q", key.Line, key.Value)
				}
			}
			if name == nil {
				return errors.Errorf("line %d: item %d has no name", item.Line, i)
			}
			names = append(names, *name)
		default:
			return errors.Errorf("line %d: item %d is not a name", item.Line, i)
		}
	}
	*l = names
	return nil
}

func Decode(data []byte) (*Project, error) {
	if len(data) < len(Magic) || string(data[:len(Magic)]) != Magic {
		return nil, errors.Wrapf(ErrBadMagic, "signature %q", data[:min(len(data), len(Magic))])
	}
	bs := utils.NewBufStack("mfpj", data)
	if major, minor := bs.LU16(4), bs.LU16(6); bs.Err() == nil && (major != VersionMajor || minor != VersionMinor) {
		return nil, errors.Wrapf(ErrBadMagic, "version %d.%d", major, minor)
	}

	p := &Project{}
	bs.Seek(8)
	numPackages := int(bs.ReadLU16())
	numLayouts := int(bs.ReadLU16())
	numResourceExts := int(bs.ReadLU16())
	reserved := bs.ReadLU16()
	namesOffset := int(bs.ReadLU32())
	for i := range p.Unk1 {
		p.Unk1[i] = bs.ReadLU32()
	}
	p.NumTextures = bs.ReadLU32()
	for i := range p.Unk2 {
		p.Unk2[i] = bs.ReadLU32()
	}
	if err := bs.Err(); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "header: %v", err)
	}
	if reserved != 0 {
		return nil, errors.Wrapf(ErrMalformed, "reserved header word is 0x%x", reserved)
	}

	bs.Seek(namesOffset)
	readNames := func(what string, count int) ([]string, error) {
		var names []string
		for i := 0; i < count; i++ {
			names = append(names, bs.ReadZString())
			if err := bs.Err(); err != nil {
				return nil, errors.Wrapf(ErrMalformed, "%s %d: %v", what, i, err)
			}
		}
		return names, nil
	}
	var err error
	if p.Packages, err = readNames("package", numPackages); err != nil {
		return nil, err
	}
	if p.Layouts, err = readNames("layout", numLayouts); err != nil {
		return nil, err
	}
	if p.ResourceExts, err = readNames("resource extension", numResourceExts); err != nil {
		return nil, err
	}
	return p, nil
}

// Encode places name tables right after header
func Encode(p *Project) ([]byte, error) {
	for _, list := range [][]string{p.Packages, p.Layouts, p.ResourceExts} {
		if len(list) > math.MaxUint16 {
			return nil, errors.Errorf("Too many names: %d", len(list))
		}
	}
	var bw utils.BufWriter
	bw.WBytes([]byte(Magic))
	bw.W16(VersionMajor)
	bw.W16(VersionMinor)
	bw.W16(uint16(len(p.Packages)))
	bw.W16(uint16(len(p.Layouts)))
	bw.W16(uint16(len(p.ResourceExts)))
	bw.W16(0)
	bw.W32(headerSize)
	for _, v := range p.Unk1 {
		bw.W32(v)
	}
	bw.W32(p.NumTextures)
	for _, v := range p.Unk2 {
		bw.W32(v)
	}
	for _, list := range [][]string{p.Packages, p.Layouts, p.ResourceExts} {
		for _, name := range list {
			if strings.IndexByte(name, 0) >= 0 {
				return nil, errors.Errorf("Name %q contains nil byte", name)
			}
			bw.WZString(name)
		}
	}
	bw.Pad(fileAlignment)
	return bw.Bytes(), nil
}
