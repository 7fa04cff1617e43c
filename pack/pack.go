package pack

import (
	"bytes"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/joker_tool/vfs"
)

var ErrNoHandler = errors.New("no handler")

// Handler converts one binary format to document and back.
// Encode is nil for read-only formats.
type Handler struct {
	Decode func(data []byte) (interface{}, error)
	Encode func(doc interface{}) ([]byte, error)
	// New returns empty document to unmarshal yaml into
	New func() interface{}
}

var (
	gHandlersLock sync.RWMutex
	gHandlers     = make(map[string]*Handler)
)

func SetHandler(format string, h *Handler) {
	gHandlersLock.Lock()
	defer gHandlersLock.Unlock()
	gHandlers[strings.ToUpper(format)] = h
}

func Formats() []string {
	gHandlersLock.RLock()
	defer gHandlersLock.RUnlock()
	list := make([]string, 0, len(gHandlers))
	for f := range gHandlers {
		list = append(list, f)
	}
	sort.Strings(list)
	return list
}

// FormatOf returns upper case extension of name, ignoring trailing .yml or .yaml
func FormatOf(name string) string {
	for _, suffix := range []string{".yml", ".yaml"} {
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			name = name[:len(name)-len(suffix)]
			break
		}
	}
	return strings.ToUpper(filepath.Ext(name))
}

func GetHandler(name string) (*Handler, error) {
	format := FormatOf(name)
	gHandlersLock.RLock()
	defer gHandlersLock.RUnlock()
	if h, found := gHandlers[format]; found {
		return h, nil
	}
	return nil, errors.Wrapf(ErrNoHandler, "Cannot find handler for '%s' extension", format)
}

func Decode(name string, data []byte) (interface{}, error) {
	h, err := GetHandler(name)
	if err != nil {
		return nil, err
	}
	doc, err := h.Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to decode '%s'", name)
	}
	return doc, nil
}

func Encode(name string, doc interface{}) ([]byte, error) {
	h, err := GetHandler(name)
	if err != nil {
		return nil, err
	}
	if h.Encode == nil {
		return nil, errors.Errorf("Format '%s' is read-only", FormatOf(name))
	}
	data, err := h.Encode(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to encode '%s'", name)
	}
	return data, nil
}

// DecodeYAML parses document of format named by name. Unknown keys are rejected.
func DecodeYAML(name string, r io.Reader) (interface{}, error) {
	h, err := GetHandler(name)
	if err != nil {
		return nil, err
	}
	if h.New == nil {
		return nil, errors.Errorf("Format '%s' has no document form", FormatOf(name))
	}
	doc := h.New()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse '%s' document", name)
	}
	return doc, nil
}

func MarshalYAML(doc interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Open decodes file fileName of directory d
func Open(d vfs.Directory, fileName string) (interface{}, error) {
	f, err := vfs.DirectoryGetFile(d, fileName)
	if err != nil {
		return nil, err
	}
	data, err := vfs.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return Decode(fileName, data)
}

// Save encodes doc, checks result decodes back and replaces file
func Save(d vfs.Directory, fileName string, doc interface{}) ([]byte, error) {
	data, err := Encode(fileName, doc)
	if err != nil {
		return nil, err
	}
	if _, err := Decode(fileName, data); err != nil {
		return nil, errors.Wrap(err, "Encoded file does not decode back")
	}
	f, err := vfs.DirectoryGetFile(d, fileName)
	if err != nil {
		return nil, err
	}
	if err := vfs.WriteFile(f, data); err != nil {
		return nil, err
	}
	return data, nil
}
