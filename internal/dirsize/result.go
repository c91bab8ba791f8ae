package dirsize

import (
	"errors"
)

// Result is the outcome of a scan in the shape consumers exchange:
// exactly one of Root, Canceled or Error is set.
type Result struct {
	// Root is the scanned tree on success.
	Root *Node `json:"root,omitempty"`
	// Canceled is true when the scan was canceled before completion.
	Canceled bool `json:"canceled,omitempty"`
	// Error describes a root-level or fatal failure.
	Error string `json:"error,omitempty"`
}

// NewResult converts the return values of Scanner.Scan into a Result.
func NewResult(root *Node, err error) Result {
	switch {
	case errors.Is(err, ErrCanceled):
		return Result{Canceled: true}
	case err != nil:
		return Result{Error: err.Error()}
	default:
		return Result{Root: root}
	}
}
