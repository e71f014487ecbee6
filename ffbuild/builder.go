// Package ffbuild cross compiles the safe core FFmpeg libraries for one Android ABI and packages
// them with a manifest.
package ffbuild

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.viam.com/utils"

	"github.com/safecore/ffmpeg-android/abi"
	"github.com/safecore/ffmpeg-android/logging"
	"github.com/safecore/ffmpeg-android/ndk"
	rutils "github.com/safecore/ffmpeg-android/utils"
)

// Result describes the outputs of a successful build.
type Result struct {
	Profile      abi.Profile
	Prefix       string
	LibDir       string
	ManifestPath string
	// ArchivePath is empty when packaging was skipped.
	ArchivePath string
	Libraries   []string
	Manifest    *Manifest
}

// Builder runs the build stages for one configuration.
type Builder struct {
	cfg       Config
	runner    Runner
	clock     clock.Clock
	features  FeatureSet
	overrides Overrides
	logger    logging.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithRunner replaces the process runner used for external steps.
func WithRunner(runner Runner) Option {
	return func(b *Builder) {
		b.runner = runner
	}
}

// WithClock replaces the clock used for manifest timestamps and progress logs.
func WithClock(clk clock.Clock) Option {
	return func(b *Builder) {
		b.clock = clk
	}
}

// WithFeatureSet replaces the SafeCore feature set.
func WithFeatureSet(features FeatureSet) Option {
	return func(b *Builder) {
		b.features = features
	}
}

// NewBuilder returns a Builder for cfg.
func NewBuilder(cfg Config, logger logging.Logger, opts ...Option) *Builder {
	b := &Builder{
		cfg:       cfg,
		clock:     clock.New(),
		features:  SafeCore,
		overrides: UnversionedSharedLibs,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.runner == nil {
		b.runner = NewProcessRunner(logger, nil)
	}
	return b
}

// build is the state of one Run.
type build struct {
	*Builder
	cfg     Config
	logger  logging.Logger
	profile abi.Profile
	tools   toolchain
	prefix  string
	libDir  string
	lock    *rutils.DirLock
	result  *Result
}

// Run executes every stage in order and stops at the first failure, which is returned as a
// *StageError. An unknown architecture is rejected before anything touches the filesystem.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	profile, err := abi.Configure(b.cfg.Arch)
	if err != nil {
		return nil, err
	}
	if conflicts := b.features.Conflicts(); len(conflicts) > 0 {
		return nil, errors.Errorf("feature set enables excluded codecs: %s", strings.Join(conflicts, ", "))
	}
	cfg, err := b.cfg.absolute()
	if err != nil {
		return nil, err
	}
	host := cfg.Host
	if host == "" {
		if host, err = ndk.ResolveHostPlatform(); err != nil {
			return nil, err
		}
	}

	prefix := filepath.Join(cfg.OutputRoot, profile.Name)
	bld := &build{
		Builder: b,
		cfg:     cfg,
		logger:  b.logger.Sublogger(profile.Name),
		profile: profile,
		tools:   newToolchain(cfg, host, profile),
		prefix:  prefix,
		libDir:  filepath.Join(prefix, "lib"),
		result:  &Result{Profile: profile, Prefix: prefix},
	}
	defer bld.unlock()

	for _, stage := range []struct {
		stage Stage
		run   func(context.Context) error
	}{
		{StagePreflight, bld.preflight},
		{StageClean, bld.clean},
		{StagePatch, bld.patch},
		{StageConfigure, bld.configure},
		{StageCompile, bld.compile},
		{StageInstall, bld.install},
		{StageVerify, bld.verify},
		{StageManifest, bld.manifest},
		{StagePackage, bld.pack},
	} {
		if err := ctx.Err(); err != nil {
			return nil, &StageError{Stage: stage.stage, Err: err}
		}
		bld.logger.Infow("Starting stage", "stage", stage.stage.String())
		if err := stage.run(ctx); err != nil {
			bld.logger.Errorw("Stage failed", "stage", stage.stage.String(), "error", err)
			return nil, &StageError{Stage: stage.stage, Err: err}
		}
	}
	bld.logger.Infow("Build complete", "stage", StageDone.String(), "lib_dir", bld.libDir, "archive", bld.result.ArchivePath)
	return bld.result, nil
}

func (bld *build) unlock() {
	if bld.lock != nil {
		utils.UncheckedErrorFunc(bld.lock.Unlock)
	}
}

// preflight checks the inputs, then creates the output root, takes the per-ABI lock and makes
// the strip alias. Nothing is created if a check fails.
func (bld *build) preflight(ctx context.Context) error {
	cc := bld.profile.CC(bld.tools.binDir)
	for _, check := range []struct {
		what string
		path string
		ok   func(string) bool
	}{
		{"toolchain", bld.cfg.ToolchainRoot, rutils.DirExists},
		{"source tree", bld.cfg.SourceDir, rutils.DirExists},
		{"configure script", filepath.Join(bld.cfg.SourceDir, "configure"), rutils.FileExists},
		{"C compiler", cc, rutils.FileExists},
	} {
		if !check.ok(check.path) {
			return &PreflightError{What: check.what, Path: check.path}
		}
	}

	if err := os.MkdirAll(bld.cfg.OutputRoot, 0o750); err != nil {
		return err
	}
	lock, err := rutils.TryLockFile(filepath.Join(bld.cfg.OutputRoot, "."+bld.profile.Name+".lock"))
	if err != nil {
		return err
	}
	bld.lock = lock
	return bld.tools.ensureStripAlias()
}

func (bld *build) step(stage Stage, name string, args ...string) Step {
	return Step{
		Stage: stage,
		Name:  name,
		Args:  args,
		Dir:   bld.cfg.SourceDir,
		Env:   map[string]string{"LC_ALL": "C"},
	}
}

// clean removes the install prefix of a previous build and runs `make distclean` when a previous
// configure left its state behind.
func (bld *build) clean(ctx context.Context) error {
	if rutils.DirExists(bld.prefix) {
		bld.logger.Infow("Removing previous install", "prefix", bld.prefix)
		if err := os.RemoveAll(bld.prefix); err != nil {
			return errors.Wrapf(err, "failed to remove %s", bld.prefix)
		}
	} else {
		bld.logger.Debugw("No previous install", "prefix", bld.prefix)
	}
	if !rutils.FileExists(filepath.Join(bld.cfg.SourceDir, "ffbuild", "config.mak")) {
		bld.logger.Debugw("Nothing to clean", "source", bld.cfg.SourceDir)
		return nil
	}
	return bld.runner.Run(ctx, bld.step(StageClean, "make", "distclean"))
}

func (bld *build) patch(ctx context.Context) error {
	configure := filepath.Join(bld.cfg.SourceDir, "configure")
	changed, notFound, err := bld.overrides.PatchFile(configure)
	if err != nil {
		return err
	}
	for _, name := range notFound {
		bld.logger.Debugw("Build variable not assigned in configure, relying on make override", "variable", name)
	}
	bld.logger.Debugw("Patched configure", "path", configure, "changed", changed)
	return nil
}

// configureArgs returns the arguments handed to FFmpeg's configure script.
func (bld *build) configureArgs() []string {
	profile, tools := bld.profile, bld.tools
	args := []string{
		"--prefix=" + bld.prefix,
		"--target-os=android",
		"--arch=" + profile.Arch,
		"--cpu=" + profile.CPU,
		"--enable-cross-compile",
		"--cross-prefix=" + tools.crossPrefix(),
		"--sysroot=" + tools.sysroot,
		"--cc=" + profile.CC(tools.binDir),
		"--cxx=" + profile.CXX(tools.binDir),
		"--ar=" + tools.llvmTool("ar"),
		"--nm=" + tools.llvmTool("nm"),
		"--ranlib=" + tools.llvmTool("ranlib"),
		"--strip=" + tools.stripAlias(),
		"--enable-shared",
		"--disable-static",
		"--enable-pic",
		"--disable-programs",
		"--disable-doc",
		"--disable-avdevice",
		"--disable-postproc",
		"--disable-debug",
	}
	args = append(args, bld.features.ConfigureArgs()...)
	args = append(args, profile.ConfigureFlags...)
	return append(args,
		"--extra-cflags="+strings.Join(profile.AllCFlags(), " "),
		"--extra-ldflags="+strings.Join(profile.AllLDFlags(), " "),
	)
}

func (bld *build) configure(ctx context.Context) error {
	script := filepath.Join(bld.cfg.SourceDir, "configure")
	return bld.runner.Run(ctx, bld.step(StageConfigure, script, bld.configureArgs()...))
}

func (bld *build) compile(ctx context.Context) error {
	jobs := bld.cfg.jobs()
	bld.logger.Infow("Compiling", "abi", bld.profile.Name, "jobs", jobs)
	stop := rutils.SlowLogger(ctx, bld.clock, "Still compiling", "abi", bld.profile.Name, bld.logger)
	defer stop()
	args := append([]string{fmt.Sprintf("-j%d", jobs)}, bld.overrides.MakeArgs()...)
	return bld.runner.Run(ctx, bld.step(StageCompile, "make", args...))
}

func (bld *build) install(ctx context.Context) error {
	args := append([]string{"install"}, bld.overrides.MakeArgs()...)
	return bld.runner.Run(ctx, bld.step(StageInstall, "make", args...))
}

func (bld *build) verify(ctx context.Context) error {
	err := VerifyLibraries(bld.libDir, RequiredLibs)
	var verr *VerificationError
	if errors.As(err, &verr) {
		for _, name := range verr.Missing {
			bld.logger.Errorw("Required library missing", "library", name, "dir", bld.libDir)
		}
	}
	if err != nil {
		return err
	}
	libs, err := filepath.Glob(filepath.Join(bld.libDir, "*.so"))
	if err != nil {
		return err
	}
	bld.result.LibDir = bld.libDir
	bld.result.Libraries = lo.Map(libs, func(path string, _ int) string { return filepath.Base(path) })
	return nil
}

func (bld *build) manifest(ctx context.Context) error {
	m := NewManifest(bld.profile, bld.features, bld.ffmpegVersion(), bld.clock.Now())
	path := filepath.Join(bld.libDir, ManifestFile)
	if err := WriteManifest(path, m); err != nil {
		return err
	}
	bld.result.ManifestPath = path
	bld.result.Manifest = m
	return nil
}

func (bld *build) pack(ctx context.Context) error {
	if bld.cfg.SkipPackage {
		bld.logger.Infow("Skipping package", "abi", bld.profile.Name)
		return nil
	}
	archive := filepath.Join(bld.cfg.OutputRoot, ArchiveName(bld.profile.Name))
	names, err := WritePackage(archive, bld.libDir)
	if err != nil {
		return err
	}
	bld.logger.Infow("Wrote archive", "path", archive, "files", len(names))
	bld.result.ArchivePath = archive
	return nil
}

// ffmpegVersion is the configured version, else the version recorded in the source tree.
func (bld *build) ffmpegVersion() string {
	if bld.cfg.FFmpegVersion != "" {
		return bld.cfg.FFmpegVersion
	}
	return SourceVersion(bld.cfg.SourceDir)
}
