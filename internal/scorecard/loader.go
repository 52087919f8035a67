package scorecard

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadTable reads a YAML band table and returns it with the raw bytes.
// KnownFields(true)로 오타/미사용 필드 즉시 실패
func LoadTable(path string) (*Table, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read band table: %w", err)
	}

	t, err := DecodeTable(bytes.NewReader(data))
	if err != nil {
		return nil, data, fmt.Errorf("%s: %w", path, err)
	}
	return t, data, nil
}

// DecodeTable decodes and validates a YAML band table
func DecodeTable(r io.Reader) (*Table, error) {
	var t Table
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode band table: %w", err)
	}

	if err := Validate(&t); err != nil {
		return nil, err
	}

	t.index()
	return &t, nil
}

// Resolve returns the table from path, or the built-in table when path is empty
func Resolve(path string, includeQuality bool) (*Table, error) {
	t := DefaultTable()
	if path != "" {
		loaded, _, err := LoadTable(path)
		if err != nil {
			return nil, err
		}
		t = loaded
	}
	return t.ForConfig(includeQuality), nil
}

// Encode writes the table as YAML
func (t *Table) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("failed to encode band table: %w", err)
	}
	return enc.Close()
}

// Hash returns the SHA256 of the canonical YAML encoding.
// JSON은 ±Inf를 표현하지 못하므로 YAML로 해시
func Hash(t *Table) (string, error) {
	var buf bytes.Buffer
	if err := t.Encode(&buf); err != nil {
		return "", err
	}

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}
