// Package jsonpos reads JSON into plain Go values and records where every
// object came from. Each decoded object carries a reserved "pos" entry,
// {"start": <offset of '{'>, "end": <offset after '}'>}, which the
// serializer copies into the source offsets of its diagnostics.
//
// Numbers decode to float64, as with encoding/json.
package jsonpos

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// Key is the reserved entry added to every object.
const Key = "pos"

// Parse decodes a single JSON document.
func Parse(data []byte) (any, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseObject decodes a document whose top level must be an object.
func ParseObject(data []byte) (map[string]any, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("jsonpos: top-level value is %T, want object", v)
	}
	return m, nil
}

// ParseReader decodes a single JSON document from r. Anything but whitespace
// after the document is an error.
func ParseReader(r io.Reader) (any, error) {
	p := &parser{dec: json.NewDecoder(r)}
	v, err := p.value()
	if err != nil {
		return nil, fmt.Errorf("jsonpos: %w", err)
	}
	if _, err := p.dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, fmt.Errorf("jsonpos: %w", err)
	}
	return v, nil
}

type parser struct {
	dec *json.Decoder
}

func (p *parser) value() (any, error) {
	tok, err := p.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch d {
	case '{':
		return p.object(p.dec.InputOffset() - 1)
	case '[':
		return p.array()
	}
	return nil, fmt.Errorf("unexpected delimiter %q at offset %d", rune(d), p.dec.InputOffset())
}

func (p *parser) object(start int64) (map[string]any, error) {
	obj := map[string]any{}
	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T at offset %d", tok, p.dec.InputOffset())
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		obj[key] = v
	}
	if err := p.closing('}'); err != nil {
		return nil, err
	}
	obj[Key] = map[string]any{"start": int(start), "end": int(p.dec.InputOffset())}
	return obj, nil
}

func (p *parser) array() ([]any, error) {
	arr := []any{}
	for p.dec.More() {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	if err := p.closing(']'); err != nil {
		return nil, err
	}
	return arr, nil
}

func (p *parser) closing(want json.Delim) error {
	tok, err := p.dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q at offset %d", rune(want), p.dec.InputOffset())
	}
	return nil
}

// Strip returns a copy of v without the "pos" entries.
func Strip(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			if k == Key {
				continue
			}
			out[k] = Strip(x)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = Strip(x)
		}
		return out
	}
	return v
}
