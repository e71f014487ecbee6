package ffbuild

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/safecore/ffmpeg-android/abi"
	"github.com/safecore/ffmpeg-android/ndk"
	rutils "github.com/safecore/ffmpeg-android/utils"
)

// toolchain locates the NDK tools for one profile. FFmpeg's configure expects a binutils style
// `<triple>-strip`, which LLVM-only NDKs do not ship; an alias to llvm-strip is kept under the
// output root so the NDK itself is never modified.
type toolchain struct {
	host     ndk.Platform
	binDir   string
	sysroot  string
	aliasDir string
	profile  abi.Profile
}

func newToolchain(cfg Config, host ndk.Platform, profile abi.Profile) toolchain {
	return toolchain{
		host:     host,
		binDir:   ndk.LLVMBinDir(cfg.ToolchainRoot, host),
		sysroot:  ndk.SysrootDir(cfg.ToolchainRoot, host),
		aliasDir: filepath.Join(cfg.OutputRoot, ".toolbin", profile.Name),
		profile:  profile,
	}
}

func (tc toolchain) llvmTool(name string) string {
	return filepath.Join(tc.binDir, "llvm-"+name+tc.host.ExeSuffix())
}

func (tc toolchain) crossPrefix() string {
	return filepath.Join(tc.aliasDir, tc.profile.CrossPrefix())
}

func (tc toolchain) stripAlias() string {
	return tc.crossPrefix() + "strip" + tc.host.ExeSuffix()
}

// ensureStripAlias links `<triple>-strip` to llvm-strip. An existing alias is kept.
func (tc toolchain) ensureStripAlias() error {
	if err := os.MkdirAll(tc.aliasDir, 0o750); err != nil {
		return err
	}
	if err := rutils.LinkFile(tc.llvmTool("strip"), tc.stripAlias()); err != nil {
		return errors.Wrap(err, "failed to create strip alias")
	}
	return nil
}
