package ffbuild

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.viam.com/test"

	"github.com/safecore/ffmpeg-android/abi"
	"github.com/safecore/ffmpeg-android/ndk"
)

const testConfigureScript = `#!/bin/sh
SLIBNAME_WITH_VERSION='$(SLIBNAME).$(LIBVERSION)'
SLIBNAME_WITH_MAJOR='$(SLIBNAME).$(LIBMAJOR)'
SLIB_INSTALL_NAME='$(SLIBNAME_WITH_VERSION)'
SLIB_INSTALL_LINKS='$(SLIBNAME_WITH_MAJOR) $(SLIBNAME)'
case $target_os in
    android)
        SLIB_INSTALL_NAME='$(SLIBNAME)'
        SLIB_INSTALL_LINKS=
        ;;
esac
cat > ffbuild/config.mak <<EOF
SLIBNAME_WITH_VERSION=${SLIBNAME_WITH_VERSION}
SLIBNAME_WITH_MAJOR=${SLIBNAME_WITH_MAJOR}
SLIB_INSTALL_NAME=${SLIB_INSTALL_NAME}
SLIB_INSTALL_LINKS=${SLIB_INSTALL_LINKS}
EOF
`

// createFakeNDK lays out the LLVM bin directory of an NDK with every profile's compiler wrapper.
func createFakeNDK(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "r26b")
	bin := ndk.LLVMBinDir(root, ndk.Linux)
	test.That(t, os.MkdirAll(bin, 0o750), test.ShouldBeNil)
	tools := []string{"clang", "llvm-ar", "llvm-nm", "llvm-ranlib", "llvm-strip"}
	for _, profile := range abi.Profiles() {
		tools = append(tools, filepath.Base(profile.CC(bin)), filepath.Base(profile.CXX(bin)))
	}
	for _, tool := range tools {
		//nolint:gosec
		test.That(t, os.WriteFile(filepath.Join(bin, tool), []byte("#!/bin/sh\n"), 0o755), test.ShouldBeNil)
	}
	return root
}

func createFakeSource(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "ffmpeg")
	test.That(t, os.MkdirAll(dir, 0o750), test.ShouldBeNil)
	//nolint:gosec
	test.That(t, os.WriteFile(filepath.Join(dir, "configure"), []byte(testConfigureScript), 0o755), test.ShouldBeNil)
	test.That(t, os.WriteFile(filepath.Join(dir, "RELEASE"), []byte("7.1\n"), 0o600), test.ShouldBeNil)
	return dir
}

func testConfig(t *testing.T, arch string) Config {
	t.Helper()
	return Config{
		ToolchainRoot: createFakeNDK(t),
		SourceDir:     createFakeSource(t),
		OutputRoot:    filepath.Join(t.TempDir(), "build", "android"),
		Arch:          arch,
		Host:          ndk.Linux,
		Jobs:          3,
	}
}

// fakeRunner records steps. Configure leaves a config.mak behind and install writes the
// libraries named by installs into the prefix handed to configure.
type fakeRunner struct {
	mu       sync.Mutex
	steps    []Step
	prefix   string
	installs []string
	failAt   Stage
	failErr  error
}

func newFakeRunner(installs ...string) *fakeRunner {
	return &fakeRunner{installs: installs, failAt: StageDone}
}

func (fr *fakeRunner) Run(ctx context.Context, step Step) error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.steps = append(fr.steps, step)
	if step.Stage == fr.failAt {
		return fr.failErr
	}

	switch step.Stage {
	case StageConfigure:
		for _, arg := range step.Args {
			if prefix, ok := strings.CutPrefix(arg, "--prefix="); ok {
				fr.prefix = prefix
			}
		}
		mak := filepath.Join(step.Dir, "ffbuild", "config.mak")
		if err := os.MkdirAll(filepath.Dir(mak), 0o750); err != nil {
			return err
		}
		return os.WriteFile(mak, []byte("ARCH=test\n"), 0o600)
	case StageInstall:
		libDir := filepath.Join(fr.prefix, "lib")
		if err := os.MkdirAll(libDir, 0o750); err != nil {
			return err
		}
		for _, name := range fr.installs {
			if err := os.WriteFile(filepath.Join(libDir, name), []byte("ELF"), 0o600); err != nil {
				return err
			}
		}
	}
	return nil
}

func (fr *fakeRunner) Steps() []Step {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	return append([]Step{}, fr.steps...)
}

func (fr *fakeRunner) StepFor(stage Stage) (Step, bool) {
	for _, step := range fr.Steps() {
		if step.Stage == stage {
			return step, true
		}
	}
	return Step{}, false
}
