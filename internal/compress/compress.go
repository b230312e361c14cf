package compress

import (
	"errors"
	"fmt"
)

// ErrUnknownCodec is returned when a codec name is not registered.
var ErrUnknownCodec = errors.New("unknown compression codec")

// Compress encodes and decodes task payloads.
type Compress interface {
	// Name is stored next to the encoded data so readers pick the same codec.
	Name() string
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

// New returns the codec registered under name. An empty name means no compression.
func New(name string) (Compress, error) {
	switch name {
	case "", NopName:
		return NewNop(), nil
	case GZipName:
		return NewGZip(), nil
	case LZ4Name:
		return NewLZ4(), nil
	case BrotliName:
		return NewBrotli(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, name)
	}
}
