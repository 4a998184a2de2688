package script

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a script from path, decoding it as YAML or JSON based on
// its extension (".json" decodes as JSON; everything else as YAML, which
// is a superset of JSON for single-document files): a single entry point
// that dispatches on file extension.
func LoadFile(path string) (*Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: read %s: %w", path, err)
	}
	return Load(raw, strings.HasSuffix(strings.ToLower(path), ".json"))
}

// Load decodes raw script bytes. When asJSON is true, raw is decoded with
// encoding/json (used for the peer-dispatch wire format); otherwise with
// gopkg.in/yaml.v3 (the authoring format).
func Load(raw []byte, asJSON bool) (*Script, error) {
	var s Script
	if asJSON {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("script: decode JSON: %w", err)
		}
		return &s, nil
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("script: decode YAML: %w", err)
	}
	return &s, nil
}
