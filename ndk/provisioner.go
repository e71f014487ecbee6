package ndk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	units "github.com/docker/go-units"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/safecore/ffmpeg-android/logging"
	rutils "github.com/safecore/ffmpeg-android/utils"
)

// DefaultBaseURL is where Google publishes NDK release archives.
const DefaultBaseURL = "https://dl.google.com/android/repository"

// Release describes a version of the NDK for one host platform.
type Release struct {
	Version  string
	Platform Platform
	// URL the release archive is downloaded from.
	URL string
	// Path the release is, or would be, installed at.
	Path string
}

// Provisioner installs NDK releases under a single install root.
type Provisioner struct {
	installRoot string
	platform    Platform
	baseURL     string
	transports  []Transport
	logger      logging.Logger
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithBaseURL downloads releases from a mirror instead of DefaultBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(p *Provisioner) {
		p.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithTransports replaces the ordered list of download transports.
func WithTransports(transports ...Transport) Option {
	return func(p *Provisioner) {
		p.transports = transports
	}
}

// NewProvisioner returns a Provisioner installing into installRoot for platform.
func NewProvisioner(installRoot string, platform Platform, logger logging.Logger, opts ...Option) *Provisioner {
	p := &Provisioner{
		installRoot: installRoot,
		platform:    platform,
		baseURL:     DefaultBaseURL,
		transports:  DefaultTransports(),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// InstallRoot returns the directory releases are installed under.
func (p *Provisioner) InstallRoot() string {
	return p.installRoot
}

// DownloadURL returns the archive URL of version for platform under baseURL.
func DownloadURL(baseURL, version string, platform Platform) string {
	return fmt.Sprintf("%s/android-ndk-%s-%s.zip", strings.TrimSuffix(baseURL, "/"), version, platform)
}

// Release describes version on this provisioner's platform and install root.
func (p *Provisioner) Release(version string) (Release, error) {
	if version == "" || strings.ContainsAny(version, `/\`) {
		return Release{}, errors.Errorf("invalid NDK version %q", version)
	}
	path, err := rutils.SafeJoinDir(p.installRoot, version)
	if err != nil {
		return Release{}, errors.Wrapf(err, "invalid NDK version %q", version)
	}
	return Release{
		Version:  version,
		Platform: p.platform,
		URL:      DownloadURL(p.baseURL, version, p.platform),
		Path:     path,
	}, nil
}

// EnsureRelease installs version if needed and returns its path. An existing directory for the
// version is returned as-is without any network access.
func (p *Provisioner) EnsureRelease(ctx context.Context, version string) (string, error) {
	release, err := p.Release(version)
	if err != nil {
		return "", err
	}
	if rutils.DirExists(release.Path) {
		p.logger.Debugf("NDK %s already installed at %s, skipping download", version, release.Path)
		return release.Path, nil
	}

	if err := os.MkdirAll(p.installRoot, 0o750); err != nil {
		return "", err
	}

	archivePath := filepath.Join(p.installRoot, filepath.Base(release.URL))
	// The archive is never kept, whether or not the install succeeds.
	defer rutils.RemoveFileNoError(archivePath)

	p.logger.Infof("Downloading NDK %s from %s", version, release.URL)
	if err := p.download(ctx, release.URL, archivePath); err != nil {
		return "", err
	}

	p.logger.Infof("Extracting NDK %s into %s", version, release.Path)
	if err := p.extract(ctx, archivePath, release.Path); err != nil {
		return "", &ExtractionError{Archive: archivePath, Err: err}
	}
	return release.Path, nil
}

// download tries each transport in order until one succeeds.
func (p *Provisioner) download(ctx context.Context, url, dst string) error {
	if len(p.transports) == 0 {
		return &DownloadError{URL: url, Err: errors.New("no transports configured")}
	}

	var allErrs error
	for _, transport := range p.transports {
		err := transport.Fetch(ctx, url, dst)
		if err == nil {
			if info, statErr := os.Stat(dst); statErr == nil {
				p.logger.Infow("Download complete", "transport", transport.Name(), "size", units.HumanSize(float64(info.Size())))
			}
			return nil
		}
		p.logger.Warnw("Download failed", "transport", transport.Name(), "error", err)
		allErrs = multierr.Append(allErrs, errors.Wrap(err, transport.Name()))
		rutils.RemoveFileNoError(dst)
		if ctx.Err() != nil {
			break
		}
	}
	return &DownloadError{URL: url, Err: allErrs}
}

// extract unpacks into a temporary directory next to dst and renames the single top level
// directory of the archive (e.g: android-ndk-r26b) to dst.
func (p *Provisioner) extract(ctx context.Context, archivePath, dst string) error {
	tmpDir, err := os.MkdirTemp(p.installRoot, ".extract-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp extraction dir")
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			p.logger.Debug(err)
		}
	}()

	if err := unpackZip(ctx, archivePath, tmpDir); err != nil {
		return err
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return err
	}
	switch {
	case len(entries) == 0:
		return errors.New("archive is empty")
	case len(entries) == 1 && entries[0].IsDir():
		return os.Rename(filepath.Join(tmpDir, entries[0].Name()), dst)
	default:
		// No wrapping directory; the temp dir itself is the release root.
		return os.Rename(tmpDir, dst)
	}
}
