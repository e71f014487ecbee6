package ndk

import (
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/magiconair/properties"
	"github.com/pkg/errors"
)

const (
	// SourcePropertiesFile is the property file at the root of every NDK release.
	SourcePropertiesFile = "source.properties"
	revisionKey          = "Pkg.Revision"
	// UnknownRevision is reported for releases without a readable revision.
	UnknownRevision = "unknown"
	// minLLVMOnlyMajor is the first NDK major version that ships only LLVM binutils.
	minLLVMOnlyMajor = 23
)

// ReadRevision returns the `Pkg.Revision` declared in an NDK root's source.properties,
// e.g: "26.1.10909125".
func ReadRevision(root string) (*semver.Version, error) {
	props, err := properties.LoadFile(filepath.Join(root, SourcePropertiesFile), properties.UTF8)
	if err != nil {
		return nil, err
	}
	raw, ok := props.Get(revisionKey)
	if !ok || raw == "" {
		return nil, errors.Errorf("%s has no %s", SourcePropertiesFile, revisionKey)
	}
	rev, err := semver.NewVersion(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s %q", revisionKey, raw)
	}
	return rev, nil
}

// revisionString is ReadRevision with failures collapsed to UnknownRevision.
func revisionString(root string) string {
	rev, err := ReadRevision(root)
	if err != nil {
		return UnknownRevision
	}
	return rev.Original()
}
