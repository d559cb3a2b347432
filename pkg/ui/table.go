package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"
)

// CacheRow is one cached artifact of the cache listing.
type CacheRow struct {
	Destination string
	Key         string
	File        string
	Token       string
	UpdatedAt   time.Time
	// Check is the verification result; empty when not verified.
	Check string
}

// RenderCacheTable writes rows as a table.
func RenderCacheTable(w io.Writer, format Format, rows []CacheRow, verified bool) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "Cache is empty")
		return err
	}

	header := []string{"DESTINATION", "KEY", "FILE", "TOKEN", "UPDATED"}
	if verified {
		header = append(header, "CHECK")
	}
	data := pterm.TableData{header}
	for _, r := range rows {
		line := []string{r.Destination, r.Key, r.File, shorten(r.Token, 28), r.UpdatedAt.Local().Format(time.DateTime)}
		if verified {
			line = append(line, r.Check)
		}
		data = append(data, line)
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(data)
	if !format.Color() {
		table = table.WithStyle(pterm.NewStyle()).WithHeaderStyle(pterm.NewStyle()).WithSeparatorStyle(pterm.NewStyle())
	}
	out, err := table.Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
