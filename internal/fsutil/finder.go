// Package fsutil provides file system utility functions over afero, so
// callers can work against the real disk or an in-memory tree alike.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FindFilesByExtension returns every file under paths whose extension is
// ext (including the dot). A path may name a file or a directory, which is
// walked recursively in lexical order. Missing paths are skipped and each
// file is listed once, in discovery order.
func FindFilesByExtension(fsys afero.Fs, ext string, paths ...string) ([]string, error) {
	if ext == "" {
		panic("extension must not be empty")
	}

	var files []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			files = append(files, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := fsys.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ext {
				add(path)
			}
			continue
		}
		err = afero.Walk(fsys, path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && filepath.Ext(p) == ext {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}
	return files, nil
}
