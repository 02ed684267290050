package io

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/stackgrid/pkg/errors"
	"github.com/matzehuels/stackgrid/pkg/grid"
)

// Stdio is the path that selects standard input or output.
const Stdio = "-"

// document is the object form of a layout file.
type document struct {
	Layout   grid.Layout    `json:"layout"`
	Children []declaration `json:"children,omitempty"`
}

// declaration accepts either a bare key or a full declaration object.
type declaration grid.Declaration

func (d *declaration) UnmarshalJSON(data []byte) error {
	var key string
	if err := json.Unmarshal(data, &key); err == nil {
		*d = declaration{Key: key}
		return nil
	}
	var full grid.Declaration
	if err := json.Unmarshal(data, &full); err != nil {
		return err
	}
	*d = declaration(full)
	return nil
}

// ReadLayout decodes a layout from r and validates it.
//
// The input is either a JSON array of items or an object with a "layout"
// array. ReadLayout returns INVALID_INPUT for malformed JSON and
// INVALID_LAYOUT when the items break the layout rules (empty or duplicate
// ids, negative coordinates, sizes below 1). ReadLayout does not close r.
func ReadLayout(r io.Reader) (grid.Layout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read layout")
	}
	l, err := decodeLayout(data)
	if err != nil {
		return nil, err
	}
	if err := grid.Validate(l, 0); err != nil {
		return nil, err
	}
	return l, nil
}

func decodeLayout(data []byte) (grid.Layout, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty layout document")
	}
	if data[0] == '[' {
		var l grid.Layout
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode layout")
		}
		return l, nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode layout")
	}
	if doc.Layout == nil {
		doc.Layout = grid.Layout{}
	}
	return doc.Layout, nil
}

// ReadDeclarations decodes a declared element set from r. Entries may be
// key strings or declaration objects. Every key must be a valid item id.
// Duplicate keys are kept; synchronization ignores all but the first.
func ReadDeclarations(r io.Reader) ([]grid.Declaration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read declarations")
	}
	data = bytes.TrimSpace(data)

	var raw []declaration
	if len(data) > 0 && data[0] == '{' {
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode declarations")
		}
		raw = doc.Children
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode declarations")
	}

	out := make([]grid.Declaration, len(raw))
	for i, d := range raw {
		if err := errors.ValidateItemID(d.Key); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "declaration %d", i)
		}
		out[i] = grid.Declaration(d)
	}
	return out, nil
}

// ImportLayout reads and validates the layout file at path. The path "-"
// reads standard input.
func ImportLayout(path string) (grid.Layout, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	l, err := ReadLayout(f)
	if err != nil {
		return nil, withPath(err, path)
	}
	return l, nil
}

// ImportDeclarations reads the declaration file at path. The path "-"
// reads standard input.
func ImportDeclarations(path string) ([]grid.Declaration, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := ReadDeclarations(f)
	if err != nil {
		return nil, withPath(err, path)
	}
	return d, nil
}

// Open opens path for reading. The path "-" returns standard input, which
// closing leaves open.
func Open(path string) (io.ReadCloser, error) {
	if path == Stdio {
		return io.NopCloser(os.Stdin), nil
	}
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "path cannot be empty")
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	return f, nil
}

// withPath prefixes err with the file it came from, keeping its code.
func withPath(err error, path string) error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInvalidInput
	}
	return errors.Wrap(code, err, "%s", path)
}
