package image

import (
	"fmt"

	"logoforge/internal/storage"
)

// Generator kinds accepted by NewGenerator.
const (
	KindPlaceholder = "placeholder"
	KindSVG         = "svg"
)

// NewGenerator builds the generator selected by kind.
func NewGenerator(kind string, store *storage.FileStore) (Generator, error) {
	switch kind {
	case KindPlaceholder, "":
		return NewPlaceholder(), nil
	case KindSVG:
		return NewSVG(store)
	default:
		return nil, fmt.Errorf("unknown generator %q", kind)
	}
}
