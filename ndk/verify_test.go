package ndk

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"github.com/safecore/ffmpeg-android/logging"
)

func installFake(t *testing.T, root, version, revision string) string {
	t.Helper()
	prov := NewProvisioner(root, Linux, logging.NewTestLogger(t),
		WithTransports(&fakeTransport{name: "fake", src: fakeNDKZip(t, version, revision)}))
	path, err := prov.EnsureRelease(context.Background(), version)
	test.That(t, err, test.ShouldBeNil)
	return path
}

func TestVerifyRelease(t *testing.T) {
	path := installFake(t, t.TempDir(), "r26b", "26.1.10909125")

	report := VerifyRelease(path, Linux)
	test.That(t, report.OK(), test.ShouldBeTrue)
	test.That(t, report.Present, test.ShouldHaveLength, 3)
	test.That(t, report.Revision, test.ShouldEqual, "26.1.10909125")

	test.That(t, os.Remove(filepath.Join(LLVMBinDir(path, Linux), "llvm-strip")), test.ShouldBeNil)
	test.That(t, os.Remove(filepath.Join(LLVMBinDir(path, Linux), "llvm-ar")), test.ShouldBeNil)
	report = VerifyRelease(path, Linux)
	test.That(t, report.OK(), test.ShouldBeFalse)
	test.That(t, report.Missing, test.ShouldHaveLength, 2)
	test.That(t, strings.Join(report.Missing, " "), test.ShouldContainSubstring, "llvm-strip")
	test.That(t, strings.Join(report.Missing, " "), test.ShouldContainSubstring, "llvm-ar")
	test.That(t, report.Present, test.ShouldResemble, []string{filepath.Join(llvmBinRel(Linux), "clang")})
}

func TestVerifyReleaseRevisionWarnings(t *testing.T) {
	old := installFake(t, t.TempDir(), "r21e", "21.4.7075529")
	report := VerifyRelease(old, Linux)
	test.That(t, report.Missing, test.ShouldBeEmpty)
	test.That(t, report.Warnings, test.ShouldHaveLength, 1)
	test.That(t, report.Warnings[0], test.ShouldContainSubstring, "predates r23")

	bare := t.TempDir()
	report = VerifyRelease(bare, Windows)
	test.That(t, report.Missing, test.ShouldHaveLength, 3)
	test.That(t, report.Missing[0], test.ShouldEndWith, "clang.exe")
	test.That(t, report.Revision, test.ShouldEqual, UnknownRevision)
	test.That(t, report.Warnings, test.ShouldHaveLength, 1)
}

func TestListInstalled(t *testing.T) {
	root := t.TempDir()
	installFake(t, root, "r25c", "25.2.9519653")
	installFake(t, root, "r26b", "26.1.10909125")
	test.That(t, os.Mkdir(filepath.Join(root, "custom"), 0o750), test.ShouldBeNil)
	test.That(t, os.WriteFile(filepath.Join(root, "custom", SourcePropertiesFile), []byte("Pkg.Revision = banana\n"), 0o600),
		test.ShouldBeNil)
	test.That(t, os.Mkdir(filepath.Join(root, "empty"), 0o750), test.ShouldBeNil)
	test.That(t, os.Mkdir(filepath.Join(root, ".extract-123"), 0o750), test.ShouldBeNil)
	test.That(t, os.WriteFile(filepath.Join(root, "ndk-env.sh"), []byte("export"), 0o600), test.ShouldBeNil)

	releases, err := ListInstalled(root)
	test.That(t, err, test.ShouldBeNil)
	found := map[string]string{}
	for release := range releases {
		found[release.Name] = release.Revision
	}
	test.That(t, found, test.ShouldResemble, map[string]string{
		"r25c":   "25.2.9519653",
		"r26b":   "26.1.10909125",
		"custom": UnknownRevision,
		"empty":  UnknownRevision,
	})

	// Early termination is honored.
	count := 0
	for range releases {
		count++
		break
	}
	test.That(t, count, test.ShouldEqual, 1)
}

func TestListInstalledMissingRoot(t *testing.T) {
	releases, err := ListInstalled(filepath.Join(t.TempDir(), "nope"))
	test.That(t, err, test.ShouldBeNil)
	count := 0
	for range releases {
		count++
	}
	test.That(t, count, test.ShouldEqual, 0)
}

func TestEmitEnvironmentDescriptor(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(t.TempDir(), "env", "ndk-env.sh")
	test.That(t, EmitEnvironmentDescriptor(path, root, Linux), test.ShouldBeNil)

	//nolint:gosec
	content, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(content), test.ShouldContainSubstring, `export ANDROID_NDK_HOME="`+root+`"`)
	test.That(t, string(content), test.ShouldContainSubstring, `export PATH="`+LLVMBinDir(root, Linux)+`:${PATH}"`)
	test.That(t, string(content), test.ShouldContainSubstring, ". "+path)
}
