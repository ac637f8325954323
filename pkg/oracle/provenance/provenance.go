// Package provenance reports which commit of a benchmark-data directory
// a deployed splitter loaded its bandwidth table from, so operators can
// tell which dataset is live without cross-referencing file mtimes.
package provenance

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// HeadCommit returns the short commit hash of repoPath's current HEAD,
// or an error if repoPath is not a git working tree (e.g. a bare
// extracted benchmark sheet with no VCS history).
func HeadCommit(repoPath string) (string, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return "", fmt.Errorf("bandwidth table source has no git history: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	hash := head.Hash().String()
	if len(hash) > 12 {
		hash = hash[:12]
	}
	return hash, nil
}

// Describe returns a human-readable provenance string for logging,
// falling back to "unknown" when no git history is available.
func Describe(repoPath string) string {
	commit, err := HeadCommit(repoPath)
	if err != nil {
		return "unknown"
	}
	return commit
}
