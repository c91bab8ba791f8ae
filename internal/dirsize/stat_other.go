//go:build !unix

package dirsize

import "os"

// lstatMeta reports the logical size only; block counts are unavailable here.
func lstatMeta(path string) (FileMeta, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return FileMeta{}, err
	}

	return FileMeta{Size: info.Size()}, nil
}
