package ffbuild

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/multierr"

	"github.com/safecore/ffmpeg-android/abi"
)

const (
	// ManifestFile is written into the library directory next to the shared objects.
	ManifestFile = "metadata.json"
	// ManifestFormatVersion is bumped on incompatible manifest changes.
	ManifestFormatVersion = 1
	BuildType             = "safe-core"
	BuildLabel            = "Safe Core (LGPL, royalty-free codecs)"
	License               = "LGPL-2.1-or-later"
)

// RequiredLibs are the shared objects every build must produce, in load order.
var RequiredLibs = []string{
	"libavcodec.so",
	"libavformat.so",
	"libavutil.so",
	"libswresample.so",
	"libswscale.so",
	"libavfilter.so",
}

// Manifest describes a finished build for the application loading the libraries.
type Manifest struct {
	FormatVersion     int      `json:"format_version" jsonschema:"minimum=1"`
	BuildID           string   `json:"build_id" jsonschema:"description=random identifier of the build run"`
	FFmpegVersion     string   `json:"ffmpeg_version"`
	BuildType         string   `json:"build_type"`
	BuildLabel        string   `json:"build_label"`
	License           string   `json:"license"`
	ABI               string   `json:"abi"`
	BuildDate         string   `json:"build_date" jsonschema:"description=UTC RFC 3339 time the manifest was written"`
	MinAndroidAPI     int      `json:"min_android_api"`
	PageAligned16K    bool     `json:"page_aligned_16k"`
	EnabledCodecs     string   `json:"enabled_codecs" jsonschema:"description=comma separated decoder names"`
	ExcludedCodecs    string   `json:"excluded_codecs" jsonschema:"description=comma separated decoder names"`
	RequiredLibs      []string `json:"required_libs"`
	FeatureSetVersion int      `json:"feature_set_version"`
}

// NewManifest returns the manifest of a build of profile with features, written at now. Each
// manifest gets a fresh build ID.
func NewManifest(profile abi.Profile, features FeatureSet, ffmpegVersion string, now time.Time) *Manifest {
	return &Manifest{
		FormatVersion:     ManifestFormatVersion,
		BuildID:           uuid.NewString(),
		FFmpegVersion:     ffmpegVersion,
		BuildType:         BuildType,
		BuildLabel:        BuildLabel,
		License:           License,
		ABI:               profile.Name,
		BuildDate:         now.UTC().Format(time.RFC3339),
		MinAndroidAPI:     profile.MinAPI,
		PageAligned16K:    true,
		EnabledCodecs:     features.EnabledCodecs(),
		ExcludedCodecs:    features.ExcludedCodecs(),
		RequiredLibs:      append([]string{}, RequiredLibs...),
		FeatureSetVersion: features.Version,
	}
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	//nolint:gosec
	return errors.Wrapf(os.WriteFile(path, append(data, '\n'), 0o644), "failed to write manifest %s", path)
}

// ReadManifest reads and validates the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := ValidateManifest(data); err != nil {
		return nil, errors.Wrapf(err, "invalid manifest %s", path)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse manifest %s", path)
	}
	return &m, nil
}

// ManifestSchema returns the JSON schema of Manifest.
func ManifestSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Manifest{})
}

// ValidateManifest checks raw manifest JSON against ManifestSchema. Every violation is returned.
func ValidateManifest(data []byte) error {
	schema, err := manifestSchemaDocument()
	if err != nil {
		return err
	}
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	var errs error
	for _, desc := range result.Errors() {
		errs = multierr.Append(errs, errors.New(desc.String()))
	}
	return errs
}

// manifestSchemaDocument is ManifestSchema as a generic document without its `$schema` draft
// identifier, which the validator does not know.
func manifestSchemaDocument() (map[string]interface{}, error) {
	raw, err := json.Marshal(ManifestSchema())
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	delete(doc, "$schema")
	return doc, nil
}
