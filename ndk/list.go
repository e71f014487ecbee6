package ndk

import (
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// InstalledRelease is a release directory found under an install root.
type InstalledRelease struct {
	Name     string
	Revision string
}

// ListInstalled returns the releases under installRoot. The directory is read up front; each
// release's source.properties is only read as the sequence is consumed. A missing install root
// yields an empty sequence.
func ListInstalled(installRoot string) (iter.Seq[InstalledRelease], error) {
	entries, err := os.ReadDir(installRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return func(func(InstalledRelease) bool) {}, nil
		}
		return nil, err
	}

	return func(yield func(InstalledRelease) bool) {
		for _, entry := range entries {
			// Skip files and in-progress extractions.
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			release := InstalledRelease{
				Name:     entry.Name(),
				Revision: revisionString(filepath.Join(installRoot, entry.Name())),
			}
			if !yield(release) {
				return
			}
		}
	}, nil
}
