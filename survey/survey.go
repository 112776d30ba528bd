// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package survey

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/m-mizutani/goerr/v2"
)

// Definition is the survey document handed to the client-side renderer.
// It is loaded once and never modified, so it is safe to share between
// requests.
type Definition struct {
	raw   json.RawMessage
	title string
}

// Load reads the survey definition from path. The document must be a JSON
// object; its contents are otherwise opaque.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read survey definition", goerr.V("path", path))
	}

	def, err := Parse(data)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid survey definition", goerr.V("path", path))
	}
	return def, nil
}

// Parse builds a Definition from raw JSON.
func Parse(data []byte) (*Definition, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, goerr.Wrap(err, "survey definition is not a JSON object")
	}
	if doc == nil {
		return nil, goerr.New("survey definition is null")
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return nil, goerr.Wrap(err, "failed to compact survey definition")
	}

	def := &Definition{raw: compact.Bytes()}
	if t, ok := doc["title"]; ok {
		// title may be a localized object; only plain strings are used
		_ = json.Unmarshal(t, &def.title)
	}
	return def, nil
}

// JSON returns the survey document. Callers must not modify it.
func (d *Definition) JSON() json.RawMessage {
	return d.raw
}

// Title is the document's "title" when it is a plain string.
func (d *Definition) Title() string {
	return d.title
}
