package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/stackgrid/pkg/errors"
	"github.com/matzehuels/stackgrid/pkg/grid"
)

// WriteLayout encodes l as an indented JSON item array and writes it to w.
// The output can be read back with [ReadLayout]. A nil layout is written
// as an empty array.
func WriteLayout(l grid.Layout, w io.Writer) error {
	if l == nil {
		l = grid.Layout{}
	}
	return writeJSON(l, w)
}

// WriteJSON encodes any value with the same indentation as [WriteLayout].
func WriteJSON(v any, w io.Writer) error {
	return writeJSON(v, w)
}

func writeJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode")
	}
	return nil
}

// ExportLayout writes l to the file at path. The path "-" writes standard
// output.
func ExportLayout(l grid.Layout, path string) error {
	w, err := Create(path)
	if err != nil {
		return err
	}
	if err := WriteLayout(l, w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Create opens path for writing, truncating an existing file. The path "-"
// returns standard output, which closing leaves open.
func Create(path string) (io.WriteCloser, error) {
	if path == Stdio {
		return nopWriteCloser{os.Stdout}, nil
	}
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "path cannot be empty")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
