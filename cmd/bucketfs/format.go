package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/koustreak/bucketfs/internal/filestore"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult reports the boolean outcome of a mutating command.
func (a *app) printResult(action string, ok bool) error {
	if a.flagJSON {
		return printJSON(a.stdout, map[string]bool{"ok": ok})
	}
	if ok {
		fmt.Fprintln(a.stdout, action)
		return nil
	}
	fmt.Fprintf(a.stdout, "%s: not confirmed\n", action)
	return nil
}

// formatSize returns a human-readable size ("1.2 kB"). Directories show "-".
func formatSize(e *filestore.Entry) string {
	if e.IsDir() {
		return "-"
	}
	return humanize.Bytes(uint64(e.Size))
}

// formatTime returns a relative timestamp ("3 minutes ago"), or "-" when
// the backend did not report one.
func formatTime(unix int64) string {
	if unix == 0 {
		return "-"
	}
	return humanize.Time(time.Unix(unix, 0))
}

// printTable writes aligned columns to the given writer.
// headers and each row must have the same length.
func printTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow(w, headers, widths)
	for _, row := range rows {
		printRow(w, row, widths)
	}
}

func printRow(w io.Writer, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
}
