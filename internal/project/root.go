package project

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"github.com/anikchand461/envpod/internal/config"
)

// FindRoot locates the project root for a command invoked in dir. A directory
// holding the config file wins, walking upward; otherwise the enclosing git
// worktree root; otherwise dir itself.
func FindRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for current := abs; ; {
		if _, err := os.Stat(filepath.Join(current, config.DefaultFileName)); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	if root, ok := gitRoot(abs); ok {
		return root, nil
	}
	return abs, nil
}

// ScaffoldRoot locates the directory a new config should be written to: the
// enclosing git worktree root, otherwise dir itself. Unlike FindRoot it never
// walks up to an existing config file, so scaffolding inside a nested
// directory cannot target a parent project's config.
func ScaffoldRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if root, ok := gitRoot(abs); ok {
		return root, nil
	}
	return abs, nil
}

// gitRoot resolves the worktree root of the repository enclosing dir.
func gitRoot(dir string) (string, bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return "", false
	}
	return worktree.Filesystem.Root(), true
}
