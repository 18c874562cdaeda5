package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/leporo/sqlbind/lint"
)

// Report is the result of a folder check.
type Report struct {
	Root     string             `json:"root" yaml:"root"`
	Findings []lint.FileFinding `json:"findings" yaml:"findings"`
	Count    int                `json:"count" yaml:"count"`
}

func writeReport(w io.Writer, format string, r Report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return writeText(w, r)
	}
	return fmt.Errorf("unsupported format %q", format)
}

func writeText(w io.Writer, r Report) error {
	for _, f := range r.Findings {
		if _, err := fmt.Fprintf(w, "%s: interpolation hole is not a binding call\n", f); err != nil {
			return err
		}
	}
	var err error
	switch r.Count {
	case 0:
		_, err = fmt.Fprintf(w, "%s: no findings\n", r.Root)
	case 1:
		_, err = fmt.Fprintf(w, "%s: 1 finding\n", r.Root)
	default:
		_, err = fmt.Fprintf(w, "%s: %d findings\n", r.Root, r.Count)
	}
	return err
}
