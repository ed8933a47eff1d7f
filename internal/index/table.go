// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/HughYau/opensci-skill/pkg/types"
)

// FormatTable writes records to w as a fixed-width table for terminal reading.
func FormatTable(records []types.SymbolRecord, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No symbols found.")
		return
	}

	fmt.Fprintf(w, "%-52s  %-7s  %-44s  %s\n", "Symbol", "Kind", "Summary", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, r := range records {
		source := r.SourceFile
		if r.SourceLine > 0 {
			source = fmt.Sprintf("%s:%d", r.SourceFile, r.SourceLine)
		}
		fmt.Fprintf(w, "%-52s  %-7s  %-44s  %s\n",
			truncate(r.Symbol, 52),
			string(r.Kind),
			truncate(r.Summary, 44),
			source,
		)
	}

	fmt.Fprintf(w, "\n%d symbols\n", len(records))
}

// FormatJSON writes records to w as indented JSON.
func FormatJSON(records []types.SymbolRecord, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// truncate shortens s to max display cells. Widths are measured with
// runewidth so wide runes in doc summaries do not break column alignment.
func truncate(s string, max int) string {
	if runewidth.StringWidth(s) <= max {
		return s
	}
	return runewidth.Truncate(s, max, "...")
}
