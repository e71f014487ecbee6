package ffbuild

import (
	"path/filepath"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/safecore/ffmpeg-android/ndk"
)

// Config is everything a build reads from its environment. Nothing else is taken from the
// process environment or working directory.
type Config struct {
	// ToolchainRoot is the root of an installed NDK release.
	ToolchainRoot string
	// SourceDir is an FFmpeg source checkout. It is cleaned and patched in place.
	SourceDir string
	// OutputRoot holds one install prefix per ABI plus the archives.
	OutputRoot string
	// Arch is an ABI name or alias, see abi.Configure.
	Arch string
	// Host selects the NDK's prebuilt directory. Empty means the running host.
	Host ndk.Platform
	// Jobs is the parallelism of compile. Zero or less means one per logical CPU.
	Jobs          int
	FFmpegVersion string
	SkipPackage   bool
}

// HostJobs returns the number of logical CPUs of the host.
func HostJobs() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

func (c Config) jobs() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return HostJobs()
}

// absolute returns c with every directory made absolute.
func (c Config) absolute() (Config, error) {
	for _, dir := range []*string{&c.ToolchainRoot, &c.SourceDir, &c.OutputRoot} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return c, err
		}
		*dir = abs
	}
	return c, nil
}
