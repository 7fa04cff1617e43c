package mfpj

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
			p, ok := doc.(*Project)
			if !ok {
				return nil, errors.Errorf("Expected *mfpj.Project, got %T", doc)
			}
			return Encode(p)
		},
		New: func() interface{} { return &Project{} },
	})
}
