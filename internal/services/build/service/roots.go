package service

import (
	"io/fs"
	"path/filepath"
	"slices"

	perr "ecotrack/internal/platform/errors"
)

// findRoots returns the slash separated paths, relative to dir, of every
// directory holding a manifest. "." is the checkout itself
func findRoots(dir, manifest string) ([]string, error) {
	var roots []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		if d.IsDir() || d.Name() != manifest {
			return nil
		}
		rel, err := filepath.Rel(dir, filepath.Dir(p))
		if err != nil {
			return err
		}
		roots = append(roots, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeIO, "scan %s for %s", dir, manifest)
	}
	slices.Sort(roots)
	return roots, nil
}
