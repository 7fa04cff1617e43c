package gar

import (
	"github.com/mogaika/joker_tool/pack"
)

type ListingFile struct {
	Name   string `yaml:"name" json:"name"`
	Type   string `yaml:"type" json:"type"`
	Offset int    `yaml:"offset" json:"offset"`
	Size   int    `yaml:"size" json:"size"`
}

// Listing is read-only summary of archive
type Listing struct {
	Creator   string        `yaml:"creator" json:"creator"`
	Alignment int           `yaml:"alignment" json:"alignment"`
	Types     []string      `yaml:"types" json:"types"`
	Files     []ListingFile `yaml:"files" json:"files"`
}

func (a *Archive) Listing() *Listing {
	l := &Listing{Creator: a.Creator, Alignment: a.GuessAlignment()}
	for _, t := range a.types {
		l.Types = append(l.Types, t.Name)
	}
	for _, f := range a.files {
		l.Files = append(l.Files, ListingFile{Name: f.Name, Type: f.Type(), Offset: f.Offset, Size: len(f.Data)})
	}
	return l
}

func init() {
	pack.SetHandler(FileExtension, &pack.Handler{
		Decode: func(data []byte) (interface{}, error) {
			a, err := Open(data)
			if err != nil {
				return nil, err
			}
			return a.Listing(), nil
		},
	})
}
