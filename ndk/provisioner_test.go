package ndk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"github.com/safecore/ffmpeg-android/logging"
)

func TestPlatformFor(t *testing.T) {
	for goos, expected := range map[string]Platform{"linux": Linux, "darwin": Darwin, "windows": Windows} {
		p, err := platformFor(goos)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, p, test.ShouldEqual, expected)
	}

	for _, goos := range []string{"freebsd", "android", "plan9", ""} {
		_, err := platformFor(goos)
		var unsupported *UnsupportedPlatformError
		test.That(t, errors.As(err, &unsupported), test.ShouldBeTrue)
		test.That(t, unsupported.GOOS, test.ShouldEqual, goos)
	}

	test.That(t, Linux.HostTag(), test.ShouldEqual, "linux-x86_64")
	test.That(t, Windows.ExeSuffix(), test.ShouldEqual, ".exe")
	test.That(t, Darwin.ExeSuffix(), test.ShouldEqual, "")
}

func TestDownloadURL(t *testing.T) {
	test.That(t, DownloadURL(DefaultBaseURL, "r26b", Linux), test.ShouldEqual,
		"https://dl.google.com/android/repository/android-ndk-r26b-linux.zip")
	test.That(t, DownloadURL("http://mirror.local/ndk/", "r25c", Darwin), test.ShouldEqual,
		"http://mirror.local/ndk/android-ndk-r25c-darwin.zip")
}

func TestEnsureReleaseIsIdempotent(t *testing.T) {
	logger := logging.NewTestLogger(t)
	root := t.TempDir()
	transport := &fakeTransport{name: "fake", src: fakeNDKZip(t, "r26b", "26.1.10909125")}
	prov := NewProvisioner(root, Linux, logger, WithTransports(transport))

	path, err := prov.EnsureRelease(context.Background(), "r26b")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, path, test.ShouldEqual, filepath.Join(root, "r26b"))
	test.That(t, transport.Calls(), test.ShouldEqual, 1)

	// Normalized to the bare version; archive and temp dirs cleaned up.
	entries, err := os.ReadDir(root)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].Name(), test.ShouldEqual, "r26b")

	clang := filepath.Join(LLVMBinDir(path, Linux), "clang")
	info, err := os.Stat(clang)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Mode().Perm()&0o100, test.ShouldNotEqual, 0)
	link, err := os.Readlink(filepath.Join(LLVMBinDir(path, Linux), "clang++"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, link, test.ShouldEqual, "clang")

	again, err := prov.EnsureRelease(context.Background(), "r26b")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again, test.ShouldEqual, path)
	test.That(t, transport.Calls(), test.ShouldEqual, 1)
}

func TestEnsureReleaseFallsBack(t *testing.T) {
	logger, observed := logging.NewObservedTestLogger(t)
	root := t.TempDir()
	primary := &fakeTransport{name: "primary", err: errors.New("connection refused")}
	secondary := &fakeTransport{name: "secondary", src: fakeNDKZip(t, "r26b", "26.1.10909125")}
	prov := NewProvisioner(root, Linux, logger, WithTransports(primary, secondary))

	path, err := prov.EnsureRelease(context.Background(), "r26b")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, primary.Calls(), test.ShouldEqual, 1)
	test.That(t, secondary.Calls(), test.ShouldEqual, 1)
	test.That(t, VerifyRelease(path, Linux).OK(), test.ShouldBeTrue)
	test.That(t, observed.FilterMessage("Download failed").Len(), test.ShouldEqual, 1)
}

func TestEnsureReleaseDownloadError(t *testing.T) {
	logger := logging.NewTestLogger(t)
	root := t.TempDir()
	prov := NewProvisioner(root, Linux, logger, WithTransports(
		&fakeTransport{name: "primary", err: errors.New("dns failure")},
		&fakeTransport{name: "secondary", err: errors.New("404 Not Found")},
	))

	_, err := prov.EnsureRelease(context.Background(), "r99z")
	var downloadErr *DownloadError
	test.That(t, errors.As(err, &downloadErr), test.ShouldBeTrue)
	test.That(t, downloadErr.URL, test.ShouldEqual, DownloadURL(DefaultBaseURL, "r99z", Linux))
	test.That(t, err.Error(), test.ShouldContainSubstring, "primary: dns failure")
	test.That(t, err.Error(), test.ShouldContainSubstring, "secondary: 404 Not Found")

	entries, err := os.ReadDir(root)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, entries, test.ShouldBeEmpty)
}

func TestEnsureReleaseExtractionError(t *testing.T) {
	logger := logging.NewTestLogger(t)
	root := t.TempDir()
	garbage := filepath.Join(t.TempDir(), "garbage.zip")
	test.That(t, os.WriteFile(garbage, []byte("this is not a zip"), 0o600), test.ShouldBeNil)
	prov := NewProvisioner(root, Linux, logger, WithTransports(&fakeTransport{name: "fake", src: garbage}))

	_, err := prov.EnsureRelease(context.Background(), "r26b")
	var extractErr *ExtractionError
	test.That(t, errors.As(err, &extractErr), test.ShouldBeTrue)

	// Neither the archive, a temp dir nor a half installed release is left behind.
	entries, err := os.ReadDir(root)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, entries, test.ShouldBeEmpty)
}

func TestEnsureReleaseRejectsBadVersion(t *testing.T) {
	logger := logging.NewTestLogger(t)
	transport := &fakeTransport{name: "fake", err: errors.New("unreachable")}
	prov := NewProvisioner(t.TempDir(), Linux, logger, WithTransports(transport))

	for _, version := range []string{"", "../r26b", "a/b", ".."} {
		_, err := prov.EnsureRelease(context.Background(), version)
		test.That(t, err, test.ShouldNotBeNil)
	}
	test.That(t, transport.Calls(), test.ShouldEqual, 0)
}

func TestEnsureReleaseWithoutWrappingDir(t *testing.T) {
	logger := logging.NewTestLogger(t)
	root := t.TempDir()
	src := filepath.Join(t.TempDir(), "flat.zip")
	writeZip(t, src, []zipEntry{
		{Name: SourcePropertiesFile, Body: "Pkg.Revision = 27.0.12077973\n", Mode: 0o644},
		{Name: "README.md", Body: "ndk", Mode: 0o644},
	})
	prov := NewProvisioner(root, Linux, logger, WithTransports(&fakeTransport{name: "fake", src: src}))

	path, err := prov.EnsureRelease(context.Background(), "r27")
	test.That(t, err, test.ShouldBeNil)
	rev, err := ReadRevision(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rev.Major(), test.ShouldEqual, uint64(27))
}
