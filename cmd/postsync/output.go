package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bft-labs/postsync/internal/app"
	"github.com/bft-labs/postsync/internal/cliconfig"
	"github.com/bft-labs/postsync/internal/domain"
)

const maxCellWidth = 48

func printPosts(w io.Writer, format string, posts domain.Posts) error {
	if format == cliconfig.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(posts)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tTITLE\tBODY")
	for _, p := range posts {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", p.ID, p.UserID, cell(p.Title), cell(p.Body))
	}
	return tw.Flush()
}

func printSummary(w io.Writer, snap app.Snapshot) {
	if snap.Error != nil {
		fmt.Fprintf(w, "v%d\t%d posts\terror: %s\n", snap.Version, len(snap.Posts), snap.Error.Message)
		return
	}
	fmt.Fprintf(w, "v%d\t%d posts\n", snap.Version, len(snap.Posts))
}

// cell flattens a value onto one line and truncates it.
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxCellWidth {
		return string(r[:maxCellWidth-1]) + "…"
	}
	return s
}
