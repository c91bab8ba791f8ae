package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/dirsize/internal/dirsize"
)

// tabSpacing is the padding between table columns.
const tabSpacing = 2

// PrintJSON writes result as indented JSON. A failed or canceled scan still
// produces a document, with root omitted and canceled or error set.
func PrintJSON(result dirsize.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("writing JSON result: %w", err)
	}

	return nil
}

func percentOf(size, total int64) float64 {
	if total <= 0 {
		return 0
	}

	return 100.0 * float64(size) / float64(total)
}

// bySize returns the children of n, largest first.
func bySize(n *dirsize.Node) []*dirsize.Node {
	children := append([]*dirsize.Node{}, n.Children...)
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].Size > children[j].Size
	})

	return children
}

//nolint:forbidigo // This function prints output to the console.
func printTree(w io.Writer, n *dirsize.Node, total int64, level, depth int) {
	name := n.Name
	if level == 0 {
		name = n.Path
	}

	if n.IsDir() {
		name += "/"
	}

	fmt.Fprintf(w, "%s%s\t%s\t(%.1f%%)\n",
		strings.Repeat("  ", level), name, humanize.IBytes(uint64(n.Size)), percentOf(n.Size, total)) //nolint:gosec // Sizes are never negative

	if level >= depth {
		return
	}

	for _, child := range bySize(n) {
		printTree(w, child, total, level+1, depth)
	}
}

// PrintTable outputs the tree down to depth, the largest entries and a summary
// in human-readable table format.
//
//nolint:forbidigo // This function prints output to the console.
func PrintTable(root *dirsize.Node, summary dirsize.Summary, depth int, elapsed time.Duration, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, tabSpacing, ' ', 0)

	fmt.Fprintln(w, "\nTree:\t\t")
	printTree(w, root, root.Size, 0, depth)

	sections := []struct {
		title string
		stats []dirsize.FileStat
	}{
		{title: "Largest directories", stats: summary.TopDirs},
		{title: "Largest files", stats: summary.TopFiles},
	}

	for _, section := range sections {
		if len(section.stats) == 0 {
			continue
		}

		fmt.Fprintf(w, "\n%s:\t\t\n", section.title)

		for i, f := range section.stats {
			fmt.Fprintf(w, "  %d) '%s'\t%s\t(%.1f%%)\n",
				i+1, f.Path, humanize.IBytes(uint64(f.Size)), percentOf(f.Size, summary.TotalBytes)) //nolint:gosec // Sizes are never negative
		}
	}

	// Stats summary
	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Total files:\t%d\n", summary.FileCount)
	fmt.Fprintf(w, "Total directories:\t%d\n", summary.DirCount)
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n",
		humanize.IBytes(uint64(summary.TotalBytes)), summary.TotalBytes) //nolint:gosec // Sizes are never negative

	fmt.Fprintf(w, "\nElapsed:\t%v\n", elapsed.Round(time.Millisecond))

	return w.Flush()
}
