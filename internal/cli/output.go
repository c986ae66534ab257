package cli

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/timetable-admin/internal/csvimport"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// rowsNode renders rows as a YAML sequence of mappings. Going through
// yaml.Node keeps each row's column order, which a Go map would lose.
func rowsNode(rows []csvimport.Fields) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range row.Keys() {
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: row.Value(k)},
			)
		}
		seq.Content = append(seq.Content, m)
	}
	return seq
}

func writeRows(w io.Writer, format string, rows []csvimport.Fields) error {
	if format == "yaml" {
		return writeYAML(w, rowsNode(rows))
	}
	if rows == nil {
		rows = []csvimport.Fields{}
	}
	return writeJSON(w, rows)
}
