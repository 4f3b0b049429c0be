package services

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ChangeDetector lists files touched between two revisions.
type ChangeDetector interface {
	ChangedFiles(repoPath, from, to string) ([]string, error)
	LatestCommit(repoPath string) (string, error)
}

type GitService struct{}

func NewGitService() *GitService {
	return &GitService{}
}

// Init initializes a new git repo at given path
func (g *GitService) Init(path string) (*git.Repository, error) {
	repo, err := git.PlainInit(path, false)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// Open an existing repo, searching parent directories for .git
func (g *GitService) Open(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// ChangedFiles returns the slash-separated paths, relative to repoPath, that
// differ between the two revisions. Revisions accept anything go-git can
// resolve: hashes, branches, tags, HEAD~n.
func (g *GitService) ChangedFiles(repoPath, from, to string) ([]string, error) {
	if from == "" || to == "" {
		return nil, fmt.Errorf("both revisions are required")
	}
	repo, err := g.Open(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", repoPath, err)
	}

	tree1, err := revisionTree(repo, from)
	if err != nil {
		return nil, err
	}
	tree2, err := revisionTree(repo, to)
	if err != nil {
		return nil, err
	}

	patch, err := tree1.Patch(tree2)
	if err != nil {
		return nil, fmt.Errorf("failed to get patch: %w", err)
	}

	prefix, err := repoRelativePrefix(repo, repoPath)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for _, fp := range patch.FilePatches() {
		fromFile, toFile := fp.Files()
		for _, f := range []diff.File{fromFile, toFile} {
			if f == nil {
				continue
			}
			p := f.Path()
			if prefix != "" {
				if !strings.HasPrefix(p, prefix+"/") {
					continue
				}
				p = strings.TrimPrefix(p, prefix+"/")
			}
			seen[p] = true
		}
	}

	files := make([]string, 0, len(seen))
	for p := range seen {
		files = append(files, p)
	}
	sort.Strings(files)
	return files, nil
}

// LatestCommit returns the latest commit hash for the given repository path
func (g *GitService) LatestCommit(repoPath string) (string, error) {
	if repoPath == "" {
		return "", fmt.Errorf("repository path cannot be empty")
	}

	if err := g.ValidateRepository(repoPath); err != nil {
		return "", fmt.Errorf("invalid repository: %w", err)
	}

	repo, err := g.Open(repoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open repository at %s: %w", repoPath, err)
	}

	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	return ref.Hash().String(), nil
}

// ValidateRepository checks if the given path is a valid git repository
func (g *GitService) ValidateRepository(repoPath string) error {
	if repoPath == "" {
		return fmt.Errorf("repository path cannot be empty")
	}

	repo, err := g.Open(repoPath)
	if err != nil {
		return fmt.Errorf("not a valid git repository: %w", err)
	}

	// HEAD must resolve for the repository to be usable
	_, err = repo.Head()
	if err != nil {
		return fmt.Errorf("repository is in an invalid state: %w", err)
	}

	return nil
}

func revisionTree(repo *git.Repository, rev string) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %s: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", rev, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree for %s: %w", rev, err)
	}
	return tree, nil
}

// repoRelativePrefix is the slash path of dir inside the repository worktree,
// or "" when dir is the worktree root.
func repoRelativePrefix(repo *git.Repository, dir string) (string, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	rootDir, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		rootDir = wt.Filesystem.Root()
	}
	if resolved, err := filepath.EvalSymlinks(absDir); err == nil {
		absDir = resolved
	}
	rel, err := filepath.Rel(rootDir, absDir)
	if err != nil || rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}
