package ffbuild

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	rutils "github.com/safecore/ffmpeg-android/utils"
)

// ArchiveName returns the file name of the archive for an ABI.
func ArchiveName(abiName string) string {
	return "safe-core-" + abiName + ".zip"
}

// packageContents returns the base names of every shared object in libDir plus the manifest,
// sorted.
func packageContents(libDir string) ([]string, error) {
	libs, err := filepath.Glob(filepath.Join(libDir, "*.so"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(libs)+1)
	for _, lib := range libs {
		names = append(names, filepath.Base(lib))
	}
	names = append(names, ManifestFile)
	sort.Strings(names)
	return names, nil
}

// WritePackage replaces archivePath with a flat zip of libDir's shared objects and manifest. It
// returns the archived names in order. A partially written archive is removed.
func WritePackage(archivePath, libDir string) (names []string, err error) {
	names, err = packageContents(libDir)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(archivePath); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "failed to remove previous archive %s", archivePath)
	}

	//nolint:gosec
	out, err := os.Create(archivePath)
	if err != nil {
		return nil, err
	}
	guard := rutils.NewGuard(func() { rutils.RemoveFileNoError(archivePath) })
	defer guard.OnFail()

	zw := zip.NewWriter(out)
	for _, name := range names {
		if err := addFile(zw, filepath.Join(libDir, name), name); err != nil {
			return nil, multierr.Combine(err, zw.Close(), out.Close())
		}
	}
	if err := multierr.Combine(zw.Close(), out.Close()); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", archivePath)
	}
	guard.Success()
	return names, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(f.Close)
	_, err = io.Copy(w, f)
	return errors.Wrapf(err, "failed to archive %s", path)
}
