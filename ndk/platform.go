// Package ndk downloads, installs, lists and verifies Android NDK releases.
package ndk

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Platform is a host operating system NDK releases are published for.
type Platform string

// Supported host platforms.
const (
	Linux   Platform = "linux"
	Darwin  Platform = "darwin"
	Windows Platform = "windows"
)

// UnsupportedPlatformError is returned when the host OS has no NDK release.
type UnsupportedPlatformError struct {
	GOOS string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported host platform %q: the NDK is only published for linux, darwin and windows", e.GOOS)
}

// ResolveHostPlatform returns the NDK platform of the running host.
func ResolveHostPlatform() (Platform, error) {
	return platformFor(runtime.GOOS)
}

func platformFor(goos string) (Platform, error) {
	switch goos {
	case "linux":
		return Linux, nil
	case "darwin":
		return Darwin, nil
	case "windows":
		return Windows, nil
	default:
		return "", &UnsupportedPlatformError{GOOS: goos}
	}
}

// HostTag is the name of the prebuilt toolchain directory for the platform. NDK r23 and newer only
// ship x86_64 host tools (run under Rosetta on Apple silicon).
func (p Platform) HostTag() string {
	return string(p) + "-x86_64"
}

// ExeSuffix is the suffix of executables on the platform.
func (p Platform) ExeSuffix() string {
	if p == Windows {
		return ".exe"
	}
	return ""
}

// LLVMBinDir returns the directory holding clang and the llvm binutils for an NDK root.
func LLVMBinDir(root string, p Platform) string {
	return filepath.Join(root, llvmBinRel(p))
}

func llvmBinRel(p Platform) string {
	return filepath.Join("toolchains", "llvm", "prebuilt", p.HostTag(), "bin")
}

// SysrootDir returns the unified sysroot of an NDK root.
func SysrootDir(root string, p Platform) string {
	return filepath.Join(root, "toolchains", "llvm", "prebuilt", p.HostTag(), "sysroot")
}
