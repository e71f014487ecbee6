package ffbuild

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

const (
	unknownVersion = "unknown"
	shortHashLen   = 7
)

// SourceVersion reports the FFmpeg version of the source tree at dir. A release tarball carries a
// VERSION file. A git checkout is named after the release tag at HEAD, or after RELEASE and the
// short commit hash otherwise. Trees with neither report "unknown".
func SourceVersion(dir string) string {
	if version := readVersionFile(dir, "VERSION"); version != "" {
		return version
	}
	release := readVersionFile(dir, "RELEASE")
	if version := gitVersion(dir, release); version != "" {
		return version
	}
	if release != "" {
		return release
	}
	return unknownVersion
}

func readVersionFile(dir, name string) string {
	//nolint:gosec
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// gitVersion returns "" when dir is not the root of a git checkout.
func gitVersion(dir, release string) string {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}

	var tag string
	if tags, err := repo.Tags(); err == nil {
		//nolint:errcheck
		tags.ForEach(func(ref *plumbing.Reference) error {
			target := ref.Hash()
			if annotated, err := repo.TagObject(target); err == nil {
				commit, err := annotated.Commit()
				if err != nil {
					return nil
				}
				target = commit.Hash
			}
			if target == head.Hash() {
				tag = ref.Name().Short()
				return storer.ErrStop
			}
			return nil
		})
	}
	// release tags are spelled n<version>
	if tag != "" {
		return strings.TrimPrefix(tag, "n")
	}

	short := head.Hash().String()[:shortHashLen]
	if release != "" {
		return release + "-g" + short
	}
	return "git-" + short
}
