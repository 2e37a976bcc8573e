package replay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// WriteJSON encodes the document with indentation
func WriteJSON(w io.Writer, d *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(d)
}

// WriteFile stores the document at path. Paths ending in .zst are zstd
// compressed.
func WriteFile(path string, d *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(path, ".zst") {
		if err := WriteJSON(f, d); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		return f.Close()
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	if err := WriteJSON(enc, d); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadFile loads and validates a document written by WriteFile
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		r = dec
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := Validate(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d := NewDocument()
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(d); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return d, nil
}
