// Package cli contains the command line apps of setup-ndk and build-ffmpeg.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"github.com/safecore/ffmpeg-android/ffbuild"
	"github.com/safecore/ffmpeg-android/logging"
	"github.com/safecore/ffmpeg-android/ndk"
	"github.com/safecore/ffmpeg-android/utils"
)

const (
	generalFlagDebug   = "debug"
	generalFlagLogFile = "log-file"

	ndkFlagInstallRoot = "install-root"
	ndkFlagNDKHome     = "ndk-home"
	ndkFlagEnvFile     = "env-file"
	ndkFlagMirror      = "mirror"

	buildFlagNDK            = "ndk"
	buildFlagSource         = "source"
	buildFlagOutput         = "output"
	buildFlagJobs           = "jobs"
	buildFlagFFmpegVersion  = "ffmpeg-version"
	buildFlagSkipPackage    = "skip-package"
	buildFlagManifestSchema = "manifest-schema"

	ndkCommandList   = "list"
	ndkCommandVerify = "verify"

	defaultArch = "arm64-v8a"
)

func debugFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    generalFlagDebug,
		Aliases: []string{"vvv"},
		Usage:   "enable debug logging (also enabled by " + utils.DebugEnvVar + ")",
	}
}

func logFileFlag() cli.Flag {
	return &cli.PathFlag{
		Name:  generalFlagLogFile,
		Usage: "also write logs to this file",
	}
}

// newLogger returns a logger writing to the app's error writer and, when requested, a log file.
// The returned function closes the log file.
func newLogger(c *cli.Context, name string) (logging.Logger, func()) {
	logger := logging.NewWriterLogger(name, c.App.ErrWriter)
	if c.Bool(generalFlagDebug) || utils.EnvIsTrue(utils.DebugEnvVar) {
		logger.SetLevel(logging.DEBUG)
	}
	path := c.Path(generalFlagLogFile)
	if path == "" {
		return logger, func() {}
	}
	file := logging.NewFileAppender(path)
	logger.AddAppender(file)
	return logger, func() {
		goutils.UncheckedError(file.Close())
	}
}

// NewSetupNDKApp returns the setup-ndk app writing to out and errOut. opts are applied to the
// provisioner after the flags.
func NewSetupNDKApp(out, errOut io.Writer, opts ...ndk.Option) *cli.App {
	return &cli.App{
		Name:            "setup-ndk",
		Usage:           "install, list and verify Android NDK releases",
		UsageText:       "setup-ndk [flags] [version|list|verify]",
		ArgsUsage:       "[version|list|verify]",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    ndkFlagInstallRoot,
				EnvVars: []string{utils.NDKInstallRootEnvVar},
				Value:   utils.DefaultNDKInstallRoot(),
				Usage:   "directory NDK releases are installed under",
			},
			&cli.StringFlag{
				Name:    ndkFlagNDKHome,
				EnvVars: []string{utils.NDKHomeEnvVar},
				Usage:   "NDK checked by `verify`; defaults to the default release under the install root",
			},
			&cli.StringFlag{
				Name:  ndkFlagEnvFile,
				Usage: "path of the generated environment script (default: <install-root>/ndk-env.sh)",
			},
			&cli.StringFlag{
				Name:  ndkFlagMirror,
				Value: ndk.DefaultBaseURL,
				Usage: "base URL NDK archives are downloaded from",
			},
			debugFlag(),
			logFileFlag(),
		},
		Action: func(c *cli.Context) error {
			return SetupNDKAction(c, opts...)
		},
	}
}

// NewBuildFFmpegApp returns the build-ffmpeg app writing to out and errOut. opts are applied to
// the builder.
func NewBuildFFmpegApp(out, errOut io.Writer, opts ...ffbuild.Option) *cli.App {
	return &cli.App{
		Name:            "build-ffmpeg",
		Usage:           "cross compile the safe core FFmpeg libraries for an Android ABI",
		UsageText:       "build-ffmpeg [flags] [arch]",
		ArgsUsage:       "[arch]",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    buildFlagNDK,
				EnvVars: []string{utils.NDKHomeEnvVar},
				Value:   utils.DefaultNDKHome(),
				Usage:   "root of the Android NDK",
			},
			&cli.StringFlag{
				Name:    buildFlagSource,
				EnvVars: []string{utils.FFmpegSourceEnvVar},
				Value:   "./ffmpeg",
				Usage:   "FFmpeg source checkout; it is cleaned and patched in place",
			},
			&cli.StringFlag{
				Name:    buildFlagOutput,
				EnvVars: []string{utils.FFmpegOutputEnvVar},
				Value:   "./build/android",
				Usage:   "directory per-ABI install prefixes and archives are written under",
			},
			&cli.IntFlag{
				Name:    buildFlagJobs,
				Aliases: []string{"j"},
				Usage:   "parallel compile jobs (default: one per logical CPU)",
			},
			&cli.StringFlag{
				Name:  buildFlagFFmpegVersion,
				Usage: "FFmpeg version recorded in the manifest (default: read from the source tree)",
			},
			&cli.BoolFlag{
				Name:  buildFlagSkipPackage,
				Usage: "do not write the zip archive",
			},
			&cli.BoolFlag{
				Name:  buildFlagManifestSchema,
				Usage: "print the JSON schema of metadata.json and exit",
			},
			debugFlag(),
			logFileFlag(),
		},
		Action: func(c *cli.Context) error {
			return BuildFFmpegAction(c, opts...)
		},
	}
}
