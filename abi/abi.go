// Package abi holds the fixed table of Android target architectures the FFmpeg build supports and
// the compiler settings used for each.
package abi

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// MinAPILevel is the lowest Android platform API level every profile targets.
const MinAPILevel = 24

// PageSizeLDFlags aligns ELF segments to 16 KiB so the libraries load on devices with 16 KiB
// memory pages. It is a superset of the 4 KiB alignment older devices need.
const PageSizeLDFlags = "-Wl,-z,max-page-size=16384"

// Canonical ABI directory names.
const (
	Arm64V8a   = "arm64-v8a"
	ArmeabiV7a = "armeabi-v7a"
	X86_64     = "x86_64"
	X86        = "x86"
)

// Profile describes how to cross compile for one Android ABI.
type Profile struct {
	// Name is the ABI directory name, e.g: "arm64-v8a".
	Name string
	// Arch is the CPU family string handed to FFmpeg's configure `--arch`.
	Arch string
	// CPU is handed to configure `--cpu`.
	CPU string
	// Triple is the unversioned target triple, e.g: "aarch64-linux-android".
	Triple string
	// ClangPrefix is the API-suffixed prefix of the NDK's clang wrapper scripts,
	// e.g: "aarch64-linux-android24-".
	ClangPrefix string
	MinAPI      int
	// CFlags are instruction-set specific compiler flags.
	CFlags []string
	// LDFlags are appended to the common linker flags.
	LDFlags []string
	// ConfigureFlags are architecture specific FFmpeg configure switches (NEON, asm, ...).
	ConfigureFlags []string
	// Aliases are alternative, case-insensitive names accepted for this profile.
	Aliases []string
}

// CC returns the path of the C compiler wrapper in the NDK's LLVM bin directory.
func (p Profile) CC(binDir string) string {
	return filepath.Join(binDir, p.ClangPrefix+"clang")
}

// CXX returns the path of the C++ compiler wrapper in the NDK's LLVM bin directory.
func (p Profile) CXX(binDir string) string {
	return filepath.Join(binDir, p.ClangPrefix+"clang++")
}

// CrossPrefix is the tool prefix FFmpeg's configure expects for binutils style tools.
func (p Profile) CrossPrefix() string {
	return p.Triple + "-"
}

// AllCFlags returns the optimisation flags shared by every profile plus the profile's own.
func (p Profile) AllCFlags() []string {
	return append([]string{"-O3", "-fPIC", "-DANDROID"}, p.CFlags...)
}

// AllLDFlags returns the page alignment flags plus the profile's own.
func (p Profile) AllLDFlags() []string {
	return append([]string{PageSizeLDFlags}, p.LDFlags...)
}

var profiles = []Profile{
	{
		Name:           Arm64V8a,
		Arch:           "aarch64",
		CPU:            "armv8-a",
		Triple:         "aarch64-linux-android",
		ClangPrefix:    fmt.Sprintf("aarch64-linux-android%d-", MinAPILevel),
		MinAPI:         MinAPILevel,
		CFlags:         []string{"-march=armv8-a"},
		ConfigureFlags: []string{"--enable-neon", "--enable-asm", "--enable-inline-asm"},
		Aliases:        []string{"arm64", "aarch64", "arm64v8", "armv8"},
	},
	{
		Name:        ArmeabiV7a,
		Arch:        "arm",
		CPU:         "armv7-a",
		Triple:      "arm-linux-androideabi",
		ClangPrefix: fmt.Sprintf("armv7a-linux-androideabi%d-", MinAPILevel),
		MinAPI:      MinAPILevel,
		CFlags:      []string{"-march=armv7-a", "-mfloat-abi=softfp", "-mfpu=neon"},
		LDFlags:     []string{"-Wl,--fix-cortex-a8"},
		ConfigureFlags: []string{
			"--enable-neon", "--enable-thumb", "--enable-asm", "--enable-inline-asm",
		},
		Aliases: []string{"armv7", "armv7a", "armeabi", "arm"},
	},
	{
		Name:           X86_64,
		Arch:           "x86_64",
		CPU:            "x86-64",
		Triple:         "x86_64-linux-android",
		ClangPrefix:    fmt.Sprintf("x86_64-linux-android%d-", MinAPILevel),
		MinAPI:         MinAPILevel,
		CFlags:         []string{"-march=x86-64", "-msse4.2", "-mpopcnt", "-m64"},
		ConfigureFlags: []string{"--enable-asm", "--disable-x86asm"},
		Aliases:        []string{"x64", "amd64", "x86-64"},
	},
	{
		Name:        X86,
		Arch:        "x86",
		CPU:         "i686",
		Triple:      "i686-linux-android",
		ClangPrefix: fmt.Sprintf("i686-linux-android%d-", MinAPILevel),
		MinAPI:      MinAPILevel,
		CFlags:      []string{"-march=i686", "-mtune=intel", "-mssse3", "-mfpmath=sse", "-m32"},
		// Hand written x86 assembly is not position independent and is rejected by the
		// Android dynamic linker (text relocations).
		ConfigureFlags: []string{"--disable-asm"},
		Aliases:        []string{"i686", "i386", "x86_32"},
	},
}

var lookup = func() map[string]Profile {
	table := make(map[string]Profile, len(profiles)*4)
	for _, p := range profiles {
		for _, name := range append([]string{p.Name}, p.Aliases...) {
			key := strings.ToLower(name)
			if _, ok := table[key]; ok {
				panic(fmt.Sprintf("duplicate architecture name %q", name))
			}
			table[key] = p
		}
	}
	return table
}()

// UnsupportedArchitectureError is returned when an architecture name is not in the profile table.
type UnsupportedArchitectureError struct {
	Name string
}

func (e *UnsupportedArchitectureError) Error() string {
	return fmt.Sprintf("unsupported architecture %q (supported: %s)", e.Name, strings.Join(Names(), ", "))
}

// Configure resolves an architecture name or alias to its profile. Lookup is case-insensitive.
// It touches nothing outside of the table so a bad name can be rejected before any build work.
func Configure(name string) (Profile, error) {
	p, ok := lookup[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, &UnsupportedArchitectureError{Name: name}
	}
	return clone(p), nil
}

// Names returns the canonical ABI names in table order.
func Names() []string {
	return lo.Map(profiles, func(p Profile, _ int) string {
		return p.Name
	})
}

// Profiles returns a copy of every profile.
func Profiles() []Profile {
	return lo.Map(profiles, func(p Profile, _ int) Profile {
		return clone(p)
	})
}

// clone copies the slices so callers cannot mutate the shared table.
func clone(p Profile) Profile {
	p.CFlags = append([]string(nil), p.CFlags...)
	p.LDFlags = append([]string(nil), p.LDFlags...)
	p.ConfigureFlags = append([]string(nil), p.ConfigureFlags...)
	p.Aliases = append([]string(nil), p.Aliases...)
	return p
}
