package config

import (
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const DefaultEncoding = "UTF-8"

var (
	encodingLock        sync.RWMutex
	currentEncoding     encoding.Encoding = unicode.UTF8
	currentEncodingName                   = DefaultEncoding
)

// SetEncoding selects encoding of archive file names. Accepts "UTF-8" or
// any code page name from ListEncodings.
func SetEncoding(name string) error {
	if name == "" || name == DefaultEncoding {
		setEncoding(unicode.UTF8, DefaultEncoding)
		return nil
	}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if cm.String() == name {
				setEncoding(cm, name)
				return nil
			}
		}
	}
	return errors.Errorf("Failed to find encoding %q", name)
}

func setEncoding(enc encoding.Encoding, name string) {
	encodingLock.Lock()
	defer encodingLock.Unlock()
	currentEncoding = enc
	currentEncodingName = name
}

func ListEncodings() []string {
	list := []string{DefaultEncoding}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

func GetEncoding() encoding.Encoding {
	encodingLock.RLock()
	defer encodingLock.RUnlock()
	return currentEncoding
}

func GetEncodingName() string {
	encodingLock.RLock()
	defer encodingLock.RUnlock()
	return currentEncodingName
}
