package importer

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/updatelog/internal/engine"
)

// ReadYAML reads a YAML sequence of rows:
//
//	- client: Acme
//	  actions: Send the revised quote
//	  next_meeting: Friday
func ReadYAML(r io.Reader) ([]engine.Row, error) {
	var rows []engine.Row
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rows); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read yaml: %w", err)
	}
	if rows == nil {
		rows = []engine.Row{}
	}
	return rows, nil
}
