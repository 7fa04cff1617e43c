package layout

import (
	"bytes"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DocumentExtension = ".yaml"

// MarshalDocument renders layout as editable yaml document
func MarshalDocument(l *Layout) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return nil, errors.Wrapf(err, "Failed to marshal layout %q", l.Name)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalDocument parses document produced by MarshalDocument.
// Unknown keys are rejected.
func UnmarshalDocument(data []byte) (*Layout, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var l Layout
	if err := dec.Decode(&l); err != nil {
		return nil, errors.Wrap(err, "Failed to parse layout document")
	}
	return &l, nil
}

// decodeStrict decodes node into v rejecting keys v has no field for.
// Node.Decode alone does not inherit KnownFields of the outer decoder.
func decodeStrict(node *yaml.Node, v interface{}) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return errors.Wrapf(err, "mapping at line %d", node.Line)
	}
	return nil
}
