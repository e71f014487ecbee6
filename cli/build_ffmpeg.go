package cli

import (
	"encoding/json"

	"github.com/urfave/cli/v2"

	"github.com/safecore/ffmpeg-android/ffbuild"
)

// BuildFFmpegAction builds the architecture named by the positional argument, arm64-v8a by
// default.
func BuildFFmpegAction(c *cli.Context, opts ...ffbuild.Option) error {
	if c.Bool(buildFlagManifestSchema) {
		schema, err := json.MarshalIndent(ffbuild.ManifestSchema(), "", "  ")
		if err != nil {
			return err
		}
		printf(c.App.Writer, "%s", schema)
		return nil
	}

	arch := c.Args().First()
	if arch == "" {
		arch = defaultArch
	}
	cfg := ffbuild.Config{
		ToolchainRoot: c.String(buildFlagNDK),
		SourceDir:     c.String(buildFlagSource),
		OutputRoot:    c.String(buildFlagOutput),
		Arch:          arch,
		Jobs:          c.Int(buildFlagJobs),
		FFmpegVersion: c.String(buildFlagFFmpegVersion),
		SkipPackage:   c.Bool(buildFlagSkipPackage),
	}

	logger, closeLog := newLogger(c, "build-ffmpeg")
	defer closeLog()
	opts = append([]ffbuild.Option{ffbuild.WithRunner(ffbuild.NewProcessRunner(logger, c.App.ErrWriter))}, opts...)
	infof(c.App.Writer, "Building FFmpeg for %s with the NDK at %s", arch, cfg.ToolchainRoot)
	result, err := ffbuild.NewBuilder(cfg, logger, opts...).Run(c.Context)
	if err != nil {
		return err
	}

	infof(c.App.Writer, "Built %d libraries for %s in %s", len(result.Libraries), result.Profile.Name, result.LibDir)
	infof(c.App.Writer, "Manifest: %s", result.ManifestPath)
	if result.ArchivePath != "" {
		infof(c.App.Writer, "Archive: %s", result.ArchivePath)
	}
	return nil
}
