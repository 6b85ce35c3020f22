package intent

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_intents.json
var defaultIntents []byte

type Intent struct {
	Tag       string   `json:"tag" yaml:"tag"`
	Patterns  []string `json:"patterns" yaml:"patterns"`
	Responses []string `json:"responses" yaml:"responses"`
}

type Dataset struct {
	Intents []Intent `json:"intents" yaml:"intents"`
}

// LoadDataset reads a .json, .yaml or .yml intents file.
// An empty path yields the embedded default dataset.
func LoadDataset(path string) (*Dataset, error) {
	if path == "" {
		return DefaultDataset()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ds Dataset
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &ds)
	default:
		err = json.Unmarshal(raw, &ds)
	}
	if err != nil {
		return nil, fmt.Errorf("parse intents %s: %w", path, err)
	}
	return &ds, ds.validate()
}

func DefaultDataset() (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(defaultIntents, &ds); err != nil {
		return nil, err
	}
	return &ds, ds.validate()
}

func (d *Dataset) validate() error {
	if len(d.Intents) == 0 {
		return fmt.Errorf("intents dataset is empty")
	}
	seen := make(map[string]struct{}, len(d.Intents))
	for i, in := range d.Intents {
		tag := strings.TrimSpace(in.Tag)
		if tag == "" {
			return fmt.Errorf("intent %d has no tag", i)
		}
		if _, dup := seen[tag]; dup {
			return fmt.Errorf("duplicate intent tag %q", tag)
		}
		seen[tag] = struct{}{}
	}
	return nil
}
