package ndk

import (
	"fmt"
	"path/filepath"

	rutils "github.com/safecore/ffmpeg-android/utils"
)

// expectedTools are the binaries, in the LLVM bin directory, a usable release provides.
var expectedTools = []string{"clang", "llvm-ar", "llvm-strip"}

// VerifyReport lists which expected binaries of a release are present. Missing binaries are
// warnings; a partial layout may still support a narrower build.
type VerifyReport struct {
	Path     string
	Revision string
	Present  []string
	Missing  []string
	Warnings []string
}

// OK returns true when nothing is missing and there are no warnings.
func (r VerifyReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Warnings) == 0
}

// ExpectedBinaries returns the paths, relative to an NDK root, checked by VerifyRelease.
func ExpectedBinaries(p Platform) []string {
	bin := llvmBinRel(p)
	ret := make([]string, 0, len(expectedTools))
	for _, tool := range expectedTools {
		ret = append(ret, filepath.Join(bin, tool+p.ExeSuffix()))
	}
	return ret
}

// VerifyRelease checks an installed NDK for its expected binaries.
func VerifyRelease(path string, p Platform) VerifyReport {
	report := VerifyReport{Path: path, Revision: UnknownRevision}
	for _, rel := range ExpectedBinaries(p) {
		if rutils.FileExists(filepath.Join(path, rel)) {
			report.Present = append(report.Present, rel)
		} else {
			report.Missing = append(report.Missing, rel)
		}
	}

	rev, err := ReadRevision(path)
	switch {
	case err != nil:
		report.Warnings = append(report.Warnings, fmt.Sprintf("could not read revision: %v", err))
	case rev.Major() < minLLVMOnlyMajor:
		report.Revision = rev.Original()
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("revision %s predates r%d; GNU binutils layouts are not supported", rev.Original(), minLLVMOnlyMajor))
	default:
		report.Revision = rev.Original()
	}
	return report
}
