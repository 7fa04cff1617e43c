package layout

import (
	"github.com/pkg/errors"

	"github.com/mogaika/joker_tool/pack"
)

func init() {
	pack.SetHandler(FileExtension, &pack.Handler{
		Decode: func(data []byte) (interface{}, error) {
			return Decode(data)
		},
		Encode: func(doc interface{}) ([]byte, error) {
			l, ok := doc.(*Layout)
			if !ok {
				return nil, errors.Errorf("Expected *layout.Layout, got %T", doc)
			}
			return Encode(l)
		},
		New: func() interface{} { return &Layout{} },
	})
}
