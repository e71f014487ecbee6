package ndk

import (
	"os"
	"path/filepath"

	"github.com/a8m/envsubst/parse"
	"github.com/pkg/errors"
)

const envDescriptorTemplate = `# Generated by setup-ndk. Source this file to use the Android NDK:
#   . ${DESCRIPTOR}
export ANDROID_NDK_HOME="${NDK_ROOT}"
export PATH="${NDK_BIN}:${PATH}"
`

// EmitEnvironmentDescriptor writes a sourceable shell script to path that exports
// ANDROID_NDK_HOME as root and prepends the NDK's LLVM bin directory to PATH.
func EmitEnvironmentDescriptor(path, root string, p Platform) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	env := []string{
		"DESCRIPTOR=" + path,
		"NDK_ROOT=" + absRoot,
		"NDK_BIN=" + LLVMBinDir(absRoot, p),
		// Substituted values are not re-evaluated so PATH is left for the shell to expand.
		"PATH=${PATH}",
	}
	rendered, err := parse.New("env-descriptor", env, &parse.Restrictions{NoUnset: true}).Parse(envDescriptorTemplate)
	if err != nil {
		return errors.Wrap(err, "failed to render environment descriptor")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	//nolint:gosec
	return os.WriteFile(path, []byte(rendered), 0o644)
}
