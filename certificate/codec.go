package certificate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/multierr"

	"tmplgen/common"
)

//go:embed template.schema.json
var schemaJSON []byte

var loadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Marshal returns canonical form of the template: stable key order, two
// space indentation and trailing newline. Templates violating invariants
// (including non-finite numbers) are rejected with common.ErrValidation.
func Marshal(t *Template) ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	out := *t
	if out.Elements == nil {
		out.Elements = make([]Image, 0)
	}
	if out.Texts == nil {
		out.Texts = make([]Text, 0)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return buf.Bytes(), nil
}

// Unmarshal validates data against template schema and decodes it. Any
// failure is reported as common.ErrMalformedTemplate.
func Unmarshal(data []byte) (*Template, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("unable to compile template schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedTemplate, err)
	}
	if !result.Valid() {
		var verr error
		for _, desc := range result.Errors() {
			verr = multierr.Append(verr, errors.New(desc.String()))
		}
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedTemplate, verr)
	}

	t := New()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(t); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedTemplate, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after template object", common.ErrMalformedTemplate)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedTemplate, err)
	}
	return t, nil
}

// Load reads and decodes template file.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %w", common.ErrInputNotFound, err)
		}
		return nil, fmt.Errorf("unable to read template: %w", err)
	}
	t, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("unable to load '%s': %w", path, err)
	}
	return t, nil
}

// Save writes canonical form of the template to path atomically.
func Save(path string, t *Template) error {
	data, err := Marshal(t)
	if err != nil {
		return err
	}
	return common.WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
