package dirsize

import (
	"sort"
)

// DefaultTopN is the number of largest entries tracked by Summarize.
const DefaultTopN = 10

// FileStat represents a single file or directory path and size.
type FileStat struct {
	// Path is the file or directory path.
	Path string `json:"path"`
	// Size is the size in bytes.
	Size int64 `json:"size"`
}

// Summary holds aggregate statistics for a scanned tree.
type Summary struct {
	// FileCount is the number of non-directory entries.
	FileCount int64 `json:"file_count"`
	// DirCount is the number of directories below the root.
	DirCount int64 `json:"dir_count"`
	// TotalBytes is the size of the root.
	TotalBytes int64 `json:"total_bytes"`
	// TopFiles contains the N largest files, largest first.
	TopFiles []FileStat `json:"top_files"`
	// TopDirs contains the N largest directories below the root, largest first.
	TopDirs []FileStat `json:"top_dirs"`
	// TopN is the number of top results tracked.
	TopN int `json:"top_n"`
}

// collector accumulates statistics while visiting a finished tree.
type collector struct {
	files     []FileStat
	dirs      []FileStat
	fileCount int64
	dirCount  int64
}

func (c *collector) visit(n *Node, root bool) {
	if !n.IsDir() {
		c.fileCount++
		c.files = append(c.files, FileStat{Path: n.Path, Size: n.Size})

		return
	}

	if !root {
		c.dirCount++
		c.dirs = append(c.dirs, FileStat{Path: n.Path, Size: n.Size})
	}

	for _, child := range n.Children {
		c.visit(child, false)
	}
}

// largest sorts stats by size (largest first, path as tiebreak) and trims to n.
func largest(stats []FileStat, n int) []FileStat {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Size != stats[j].Size {
			return stats[i].Size > stats[j].Size
		}

		return stats[i].Path < stats[j].Path
	})

	if len(stats) > n {
		stats = stats[:n]
	}

	return stats
}

// Summarize walks a scanned tree and reports counts and the largest entries.
func Summarize(root *Node, topN int) Summary {
	if topN <= 0 {
		topN = DefaultTopN
	}

	if root == nil {
		return Summary{TopFiles: []FileStat{}, TopDirs: []FileStat{}, TopN: topN}
	}

	c := &collector{}

	c.visit(root, true)

	return Summary{
		FileCount:  c.fileCount,
		DirCount:   c.dirCount,
		TotalBytes: root.Size,
		TopFiles:   append([]FileStat{}, largest(c.files, topN)...),
		TopDirs:    append([]FileStat{}, largest(c.dirs, topN)...),
		TopN:       topN,
	}
}
