// Package dirsize computes the recursive disk footprint of a directory tree.
//
// A Scanner runs one walker goroutine per scan. The walker visits the tree
// depth-first, resolves the on-disk size of every file (probing very large
// files for sparseness with du) and aggregates directory sizes bottom-up.
// Progress deltas travel over a channel to the scanner, which turns them into
// throttled percentage estimates for a ProgressHook. Cancellation is
// cooperative and checked before each directory and each entry.
package dirsize
