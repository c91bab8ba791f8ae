package dirsize

import (
	"encoding/json"
	"fmt"
)

// Kind distinguishes files from directories.
type Kind int

const (
	// File is any non-directory entry, including symlinks and devices.
	File Kind = iota
	// Directory is a directory whose size is the sum of its children.
	Directory
)

// String returns the lowercase name used in the JSON data contract.
func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Directory:
		return "directory"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalJSON encodes the kind as its name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "file":
		*k = File
	case "directory":
		*k = Directory
	default:
		return fmt.Errorf("unknown node kind %q", s)
	}

	return nil
}

// Node is a scanned file or directory.
type Node struct {
	// Name is the base name of the entry.
	Name string
	// Path is the absolute path, the identity of the node.
	Path string
	// Size is the number of bytes the entry consumes on disk.
	// For directories it is the sum of the children's sizes.
	Size int64
	// Kind is File or Directory.
	Kind Kind
	// Children is nil for files and non-nil (possibly empty) for directories.
	Children []*Node
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n.Kind == Directory
}

type nodeJSON struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Size     int64    `json:"size"`
	Kind     Kind     `json:"kind"`
	Children *[]*Node `json:"children,omitempty"`
}

// MarshalJSON omits children for files and always emits an array for directories.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{Name: n.Name, Path: n.Path, Size: n.Size, Kind: n.Kind}

	if n.Kind == Directory {
		children := n.Children
		if children == nil {
			children = []*Node{}
		}

		out.Children = &children
	}

	return json.Marshal(out)
}

// UnmarshalJSON restores a node, leaving Children non-nil for directories.
func (n *Node) UnmarshalJSON(data []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*n = Node{Name: in.Name, Path: in.Path, Size: in.Size, Kind: in.Kind}

	if in.Kind == Directory {
		n.Children = []*Node{}
		if in.Children != nil {
			n.Children = *in.Children
		}
	}

	return nil
}
