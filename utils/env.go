package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
)

const (
	// NDKHomeEnvVar names the root of the NDK used for builds. It is also what the generated
	// environment descriptor exports.
	NDKHomeEnvVar = "ANDROID_NDK_HOME"

	// NDKInstallRootEnvVar overrides the directory NDK releases are installed into.
	NDKInstallRootEnvVar = "NDK_INSTALL_ROOT"

	// FFmpegSourceEnvVar points at the upstream FFmpeg checkout.
	FFmpegSourceEnvVar = "FFMPEG_SOURCE"

	// FFmpegOutputEnvVar overrides the root directory that per-ABI builds are written under.
	FFmpegOutputEnvVar = "FFMPEG_OUTPUT"

	// DebugEnvVar enables debug logging for both tools.
	DebugEnvVar = "SAFECORE_DEBUG"

	// DefaultNDKVersion is the NDK release installed and built against when none is given.
	DefaultNDKVersion = "r26b"
)

// EnvTrueValues contains strings that we interpret as boolean true in env vars.
var EnvTrueValues = []string{"true", "yes", "1", "TRUE", "YES"}

// EnvIsTrue returns whether the environment variable is set to one of EnvTrueValues.
func EnvIsTrue(name string) bool {
	return slices.Contains(EnvTrueValues, os.Getenv(name))
}

// PlatformHomeDir wraps Getenv("HOME"), falling back to os.UserHomeDir on windows.
func PlatformHomeDir() string {
	if runtime.GOOS == "windows" {
		homedir, _ := os.UserHomeDir() //nolint:errcheck
		if homedir != "" {
			return homedir
		}
	}
	return os.Getenv("HOME")
}

// DefaultNDKInstallRoot is the directory NDK releases are installed into when NDK_INSTALL_ROOT is
// not set.
func DefaultNDKInstallRoot() string {
	return filepath.Join(PlatformHomeDir(), "android-ndk")
}

// DefaultNDKHome is the toolchain root used by the build when ANDROID_NDK_HOME is not set. It is
// where `setup-ndk` installs the default release.
func DefaultNDKHome() string {
	return filepath.Join(DefaultNDKInstallRoot(), DefaultNDKVersion)
}
