package fetch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/docdex/docdex"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Ensure GitAdapter implements docdex.SourceAdapter at compile time.
var _ docdex.SourceAdapter = (*GitAdapter)(nil)

// GitAdapter clones or updates a git repository under the working
// directory, then collects matching files from the checkout.
type GitAdapter struct {
	Workdir string
	Logger  *slog.Logger
}

// FetchSource materializes the repository at <workdir>/<source id>. An
// existing checkout is pulled; pull failures are logged and the stale
// checkout is used as-is. The source's version label is back-filled
// from its branch when absent.
func (a *GitAdapter) FetchSource(ctx context.Context, src *docdex.Source, maxItems int) ([]string, error) {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Join(a.Workdir, src.ID)
	if err := os.MkdirAll(a.Workdir, 0o755); err != nil {
		return nil, err
	}

	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		logger.Info("git pull", "source_id", src.ID, "path", dir)
		if err := a.pull(ctx, dir); err != nil {
			logger.Warn("git pull failed, using existing checkout", "source_id", src.ID, "error", err)
		}
	} else {
		logger.Info("git clone", "source_id", src.ID, "url", src.Location, "branch", src.Branch)
		opts := &git.CloneOptions{
			URL:   src.Location,
			Depth: 1,
		}
		if src.Branch != "" {
			opts.ReferenceName = plumbing.NewBranchReferenceName(src.Branch)
			opts.SingleBranch = true
		}
		if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
			return nil, err
		}
	}

	if src.Version == "" {
		src.Version = src.Branch
	}

	return collectFiles(dir, src.IncludeGlobs, src.ExcludeGlobs, maxItems)
}

func (a *GitAdapter) pull(ctx context.Context, dir string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	err = wt.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}
