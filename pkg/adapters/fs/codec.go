package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/aretw0/quire/pkg/core"
)

// Indent is the fixed indentation of notebook blobs.
const Indent = "    "

// Codec converts notebook values to and from their on-disk JSON form.
type Codec struct {
	// Strict enables strict number parsing (as json.Number) to avoid precision loss.
	Strict bool
}

// NewCodec creates a new codec.
// Optional strict mode prevents float64 conversion for large integers.
func NewCodec(strict bool) *Codec {
	return &Codec{Strict: strict}
}

// Encode renders v as pretty-printed JSON without a trailing newline.
func (c *Codec) Encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", Indent)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notebook: %w", err)
	}
	return data, nil
}

// Decode parses a notebook blob. Anything that is not exactly one JSON value
// fails with core.ErrMalformedDocument.
func (c *Codec) Decode(data []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	if c.Strict {
		decoder.UseNumber()
	}

	var v any
	if err := decoder.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedDocument, err)
	}

	var extra any
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", core.ErrMalformedDocument)
	}

	return v, nil
}
