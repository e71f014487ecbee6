package ffbuild

// Stage is a step of a build. Stages run in declaration order.
type Stage int

// The build stages.
const (
	StagePreflight Stage = iota
	StageClean
	StagePatch
	StageConfigure
	StageCompile
	StageInstall
	StageVerify
	StageManifest
	StagePackage
	StageDone
)

var stageNames = [...]string{
	StagePreflight: "preflight",
	StageClean:     "clean",
	StagePatch:     "patch",
	StageConfigure: "configure",
	StageCompile:   "compile",
	StageInstall:   "install",
	StageVerify:    "verify",
	StageManifest:  "manifest",
	StagePackage:   "package",
	StageDone:      "done",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}
