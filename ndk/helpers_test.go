package ndk

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

type zipEntry struct {
	Name string
	Body string
	Mode os.FileMode
}

func writeZip(t *testing.T, path string, entries []zipEntry) {
	t.Helper()
	//nolint:gosec
	f, err := os.Create(path)
	test.That(t, err, test.ShouldBeNil)
	zw := zip.NewWriter(f)
	for _, entry := range entries {
		hdr := &zip.FileHeader{Name: entry.Name, Method: zip.Deflate}
		hdr.SetMode(entry.Mode)
		w, err := zw.CreateHeader(hdr)
		test.That(t, err, test.ShouldBeNil)
		if !entry.Mode.IsDir() {
			_, err = io.WriteString(w, entry.Body)
			test.That(t, err, test.ShouldBeNil)
		}
	}
	test.That(t, zw.Close(), test.ShouldBeNil)
	test.That(t, f.Close(), test.ShouldBeNil)
}

// fakeNDKEntries is the minimal layout of an NDK release archive.
func fakeNDKEntries(version, revision string, p Platform) []zipEntry {
	top := "android-ndk-" + version + "/"
	bin := top + filepath.ToSlash(llvmBinRel(p)) + "/"
	return []zipEntry{
		{Name: top, Mode: os.ModeDir | 0o755},
		{Name: top + SourcePropertiesFile, Body: "Pkg.Desc = Android NDK\nPkg.Revision = " + revision + "\n", Mode: 0o644},
		{Name: bin + "clang" + p.ExeSuffix(), Body: "#!/bin/sh\n", Mode: 0o755},
		{Name: bin + "llvm-ar" + p.ExeSuffix(), Body: "#!/bin/sh\n", Mode: 0o755},
		{Name: bin + "llvm-strip" + p.ExeSuffix(), Body: "#!/bin/sh\n", Mode: 0o755},
		{Name: bin + "clang++", Body: "clang", Mode: os.ModeSymlink | 0o777},
	}
}

func fakeNDKZip(t *testing.T, version, revision string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "android-ndk-"+version+".zip")
	writeZip(t, path, fakeNDKEntries(version, revision, Linux))
	return path
}

// fakeTransport copies a local file or returns err, counting calls.
type fakeTransport struct {
	mu    sync.Mutex
	name  string
	src   string
	err   error
	calls int
}

func (ft *fakeTransport) Name() string {
	return ft.name
}

func (ft *fakeTransport) Fetch(ctx context.Context, url, dst string) error {
	ft.mu.Lock()
	ft.calls++
	ft.mu.Unlock()
	if ft.err != nil {
		// Leave a partial file behind like a real interrupted download would.
		if err := os.WriteFile(dst, []byte("partial"), 0o600); err != nil {
			return err
		}
		return ft.err
	}
	//nolint:gosec
	data, err := os.ReadFile(ft.src)
	if err != nil {
		return errors.Wrap(err, "fake transport")
	}
	return os.WriteFile(dst, data, 0o600)
}

func (ft *fakeTransport) Calls() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.calls
}
