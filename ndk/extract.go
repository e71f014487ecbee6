package ndk

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/go-units"
	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	rutils "github.com/safecore/ffmpeg-android/utils"
)

const (
	// maxEntrySize caps any single extracted file. The largest files in an NDK (libclang-cpp)
	// are well under this.
	maxEntrySize = 4 << 30
	// maxLinkSize caps the size of a symlink entry's target path.
	maxLinkSize = 4096
)

// unpackZip extracts a zip archive into toDir, restoring permissions and symlinks. Entries that
// would land outside of toDir are rejected.
func unpackZip(ctx context.Context, fromFile, toDir string) error {
	if err := os.MkdirAll(toDir, 0o750); err != nil {
		return err
	}

	archive, err := zip.OpenReader(fromFile)
	if err != nil {
		return errors.Wrap(err, "open zip")
	}
	defer utils.UncheckedErrorFunc(archive.Close)

	type link struct {
		Target string
		Path   string
	}
	symlinks := []link{}

	for _, entry := range archive.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name
		if name == "" || name == "./" {
			continue
		}

		path, err := rutils.SafeJoinDir(toDir, name)
		if err != nil {
			return err
		}

		mode := entry.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(path, 0o750|mode.Perm()); err != nil {
				return errors.Wrapf(err, "failed to create directory %s", path)
			}

		case mode&os.ModeSymlink != 0:
			target, err := readLinkTarget(entry)
			if err != nil {
				return err
			}
			if err := safeLink(toDir, path, target); err != nil {
				return err
			}
			symlinks = append(symlinks, link{Target: target, Path: path})

		default:
			if err := extractFile(entry, path, mode, maxEntrySize); err != nil {
				return err
			}
		}
	}

	// Links are created last so that their targets exist.
	for i := range symlinks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(symlinks[i].Path), 0o750); err != nil {
			return err
		}
		if err := rutils.LinkFile(symlinks[i].Target, symlinks[i].Path); err != nil {
			return errors.Wrapf(err, "failed to create link %s", symlinks[i].Path)
		}
	}

	return nil
}

// extractFile writes entry to path. Entries larger than limit bytes are rejected rather than
// truncated.
func extractFile(entry *zip.File, path string, mode os.FileMode, limit int64) error {
	if entry.UncompressedSize64 > uint64(limit) {
		return errors.Errorf("%s is larger than the %s entry limit", entry.Name, units.BytesSize(float64(limit)))
	}
	// Zips may omit directory entries, e.g: `zip -r ndk.zip android-ndk-r26b/bin/clang`.
	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0o750); err != nil {
		return errors.Wrapf(err, "failed to create directory %q", parent)
	}

	rc, err := entry.Open()
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", entry.Name)
	}
	defer utils.UncheckedErrorFunc(rc.Close)

	//nolint:gosec // path sanitized with rutils.SafeJoinDir
	outFile, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600|mode.Perm())
	if err != nil {
		return errors.Wrapf(err, "failed to create file %s", path)
	}
	defer utils.UncheckedErrorFunc(outFile.Close)

	n, err := io.CopyN(outFile, rc, limit)
	if err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrapf(err, "failed to copy file %s", path)
	}
	if n == limit {
		if extra, _ := rc.Read(make([]byte, 1)); extra > 0 {
			return errors.Errorf("%s is larger than the %s entry limit", entry.Name, units.BytesSize(float64(limit)))
		}
	}
	return errors.Wrapf(outFile.Sync(), "failed to sync %s", path)
}

func readLinkTarget(entry *zip.File) (string, error) {
	rc, err := entry.Open()
	if err != nil {
		return "", errors.Wrapf(err, "failed to open %s", entry.Name)
	}
	defer utils.UncheckedErrorFunc(rc.Close)

	target, err := io.ReadAll(io.LimitReader(rc, maxLinkSize))
	if err != nil {
		return "", errors.Wrapf(err, "failed to read link %s", entry.Name)
	}
	return strings.TrimSpace(string(target)), nil
}

// safeLink rejects symlinks that are absolute or resolve outside of parent.
func safeLink(parent, linkPath, target string) error {
	if filepath.IsAbs(target) {
		return errors.Errorf("unsafe path link: '%s' with '%s', cannot be absolute path", linkPath, target)
	}
	resolved := filepath.Join(filepath.Dir(linkPath), target)
	rel, err := filepath.Rel(parent, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return errors.Errorf("unsafe path link: '%s' with '%s'", linkPath, target)
	}
	return nil
}
