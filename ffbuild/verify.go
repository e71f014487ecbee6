package ffbuild

import (
	"path/filepath"

	rutils "github.com/safecore/ffmpeg-android/utils"
)

// VerifyLibraries checks that every required library exists in libDir as a regular file. All
// missing libraries are reported together.
func VerifyLibraries(libDir string, required []string) error {
	var missing []string
	for _, name := range required {
		if !rutils.FileExists(filepath.Join(libDir, name)) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &VerificationError{Dir: libDir, Missing: missing}
	}
	return nil
}
