package ffbuild

import (
	"bytes"
	"os"
	"regexp"

	"github.com/pkg/errors"
)

// Override sets one variable of FFmpeg's build system.
type Override struct {
	Name  string
	Value string
}

// Overrides is an ordered table of build variable overrides.
type Overrides []Override

// UnversionedSharedLibs makes install produce bare libNAME.so files without versioned copies or
// symlinks, which is what Android's loader expects.
var UnversionedSharedLibs = Overrides{
	{Name: "SLIBNAME_WITH_MAJOR", Value: "$(SLIBNAME)"},
	{Name: "SLIBNAME_WITH_VERSION", Value: "$(SLIBNAME)"},
	{Name: "SLIB_INSTALL_NAME", Value: "$(SLIBNAME)"},
	{Name: "SLIB_INSTALL_LINKS", Value: ""},
}

// MakeArgs returns the overrides as make command line variable assignments.
func (o Overrides) MakeArgs() []string {
	args := make([]string, 0, len(o))
	for _, override := range o {
		args = append(args, override.Name+"="+override.Value)
	}
	return args
}

// shellAssignment is the configure script form of the override.
func (o Override) shellAssignment() []byte {
	if o.Value == "" {
		return []byte(o.Name + "=")
	}
	return []byte(o.Name + "='" + o.Value + "'")
}

// pattern matches the single quoted or empty default assignments of the variable. Expansions
// such as NAME=${NAME} in the config.mak template are left alone.
func (o Override) pattern() *regexp.Regexp {
	return regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(o.Name) + `=('[^'\n]*')?[ \t]*$`)
}

// Apply rewrites every assignment of an overridden variable in script. Assignments already
// carrying the override are left byte for byte identical. It returns the names of variables
// that were not found.
func (o Overrides) Apply(script []byte) ([]byte, []string) {
	var notFound []string
	for _, override := range o {
		re := override.pattern()
		if !re.Match(script) {
			notFound = append(notFound, override.Name)
			continue
		}
		assignment := override.shellAssignment()
		script = re.ReplaceAllFunc(script, func(line []byte) []byte {
			indent := line[:len(line)-len(bytes.TrimLeft(line, " \t"))]
			return append(append([]byte{}, indent...), assignment...)
		})
	}
	return script, notFound
}

// PatchFile applies the overrides to the script at path. The file is only rewritten when its
// contents change.
func (o Overrides) PatchFile(path string) (changed bool, notFound []string, err error) {
	//nolint:gosec
	original, err := os.ReadFile(path)
	if err != nil {
		return false, nil, err
	}
	patched, notFound := o.Apply(original)
	if bytes.Equal(original, patched) {
		return false, notFound, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, notFound, err
	}
	if err := os.WriteFile(path, patched, info.Mode().Perm()); err != nil {
		return false, notFound, errors.Wrapf(err, "failed to write %s", path)
	}
	return true, notFound, nil
}
