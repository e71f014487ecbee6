package cli

import (
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/safecore/ffmpeg-android/ndk"
	"github.com/safecore/ffmpeg-android/utils"
)

// SetupNDKAction dispatches the positional argument of setup-ndk: `list`, `verify` or a release
// version to install. Anything that is not a reserved word is a version.
func SetupNDKAction(c *cli.Context, opts ...ndk.Option) error {
	platform, err := ndk.ResolveHostPlatform()
	if err != nil {
		return err
	}
	installRoot := c.String(ndkFlagInstallRoot)

	switch arg := c.Args().First(); arg {
	case ndkCommandList:
		return listInstalled(c, installRoot)
	case ndkCommandVerify:
		return verifyRelease(c, installRoot, platform)
	default:
		version := arg
		if version == "" {
			version = utils.DefaultNDKVersion
		}
		return installRelease(c, installRoot, platform, version, opts...)
	}
}

func installRelease(c *cli.Context, installRoot string, platform ndk.Platform, version string, opts ...ndk.Option) error {
	logger, closeLog := newLogger(c, "setup-ndk")
	defer closeLog()
	opts = append([]ndk.Option{ndk.WithBaseURL(c.String(ndkFlagMirror))}, opts...)
	prov := ndk.NewProvisioner(installRoot, platform, logger, opts...)

	path, err := prov.EnsureRelease(c.Context, version)
	if err != nil {
		return err
	}
	infof(c.App.Writer, "NDK %s is installed at %s", version, path)

	report := ndk.VerifyRelease(path, platform)
	for _, missing := range report.Missing {
		warningf(c.App.Writer, "expected binary %s is missing", missing)
	}
	for _, warning := range report.Warnings {
		warningf(c.App.Writer, "%s", warning)
	}

	envFile := c.String(ndkFlagEnvFile)
	if envFile == "" {
		envFile = filepath.Join(installRoot, "ndk-env.sh")
	}
	if err := ndk.EmitEnvironmentDescriptor(envFile, path, platform); err != nil {
		return errors.Wrap(err, "failed to write environment script")
	}
	infof(c.App.Writer, "Run `. %s` to use it", envFile)
	return nil
}

func listInstalled(c *cli.Context, installRoot string) error {
	releases, err := ndk.ListInstalled(installRoot)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Version", "Revision", "Path"})
	count := 0
	for release := range releases {
		t.AppendRow(table.Row{release.Name, release.Revision, filepath.Join(installRoot, release.Name)})
		count++
	}
	if count == 0 {
		printf(c.App.Writer, "No NDK releases installed under %s", installRoot)
		return nil
	}
	printf(c.App.Writer, "%s", t.Render())
	return nil
}

func verifyRelease(c *cli.Context, installRoot string, platform ndk.Platform) error {
	path := c.String(ndkFlagNDKHome)
	if path == "" {
		path = filepath.Join(installRoot, utils.DefaultNDKVersion)
	}
	if !utils.DirExists(path) {
		return errors.Errorf("no NDK found at %s; set --%s or %s, or install one first", path, ndkFlagNDKHome, utils.NDKHomeEnvVar)
	}

	report := ndk.VerifyRelease(path, platform)
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Binary", "Status"})
	for _, present := range report.Present {
		t.AppendRow(table.Row{present, "ok"})
	}
	for _, missing := range report.Missing {
		t.AppendRow(table.Row{missing, "missing"})
	}
	printf(c.App.Writer, "NDK %s (revision %s)", report.Path, report.Revision)
	printf(c.App.Writer, "%s", t.Render())
	for _, warning := range report.Warnings {
		warningf(c.App.Writer, "%s", warning)
	}
	if !report.OK() {
		warningf(c.App.Writer, "%d of %d expected binaries missing", len(report.Missing), len(ndk.ExpectedBinaries(platform)))
	}
	return nil
}
