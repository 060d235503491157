package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/Phrasing/kindle"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported format %q (use %s, %s or %s)", format, formatTable, formatJSON, formatYAML)
	}
}

func writeBooks(w io.Writer, format string, books []kindle.BookData) error {
	if format != formatTable {
		return writeValue(w, format, books)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ASIN\tTITLE\tAUTHORS\tREAD")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f%%\n", b.ASIN, b.Title, strings.Join(b.Authors, ", "), b.PercentageRead)
	}
	return tw.Flush()
}

func writeValue(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
