package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/cleared-dev/hearth/internal/categories"
	"github.com/cleared-dev/hearth/internal/config"
	"github.com/cleared-dev/hearth/internal/gitops"
	"github.com/cleared-dev/hearth/internal/id"
	"github.com/cleared-dev/hearth/internal/ledger"
	"github.com/cleared-dev/hearth/internal/logging"
	"github.com/cleared-dev/hearth/internal/runlog"
	"github.com/cleared-dev/hearth/internal/templates"
)

// household bundles the stores of one household directory for a command.
type household struct {
	root   string
	now    time.Time
	cfg    *config.Config
	store  *templates.Store
	ledger *ledger.Service
	cats   *categories.Service
	logger *slog.Logger
}

func (o *rootOptions) root() (string, error) {
	abs, err := filepath.Abs(o.dir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

// today returns --as-of, or the current local date, as a UTC midnight.
func (o *rootOptions) today() (time.Time, error) {
	if o.asOf == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return parseDate("--as-of", o.asOf)
}

func openHousehold(opts *rootOptions, logOut io.Writer) (*household, error) {
	root, err := opts.root()
	if err != nil {
		return nil, err
	}
	now, err := opts.today()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s is not a household (no %s); run hearth init", root, config.FileName)
		}
		return nil, err
	}
	logger := logging.Setup(logging.FromSettings(cfg.Logging.Level, cfg.Logging.JSON, logOut))

	store, err := templates.Load(root)
	if err != nil {
		return nil, err
	}

	cats, err := categories.Load(root)
	if errors.Is(err, fs.ErrNotExist) {
		cats, err = categories.NewService(categories.DefaultChart()), nil
	}
	if err != nil {
		return nil, err
	}

	return &household{
		root:   root,
		now:    now,
		cfg:    cfg,
		store:  store,
		ledger: ledger.NewService(root),
		cats:   cats,
		logger: logger,
	}, nil
}

// finish records a mutation in the run log and commits the household when
// git.auto_commit is set.
func (h *household) finish(e runlog.Entry, message string) error {
	e.Timestamp = time.Now()
	if err := runlog.Append(h.root, e); err != nil {
		return fmt.Errorf("writing run log: %w", err)
	}

	if !h.cfg.Git.AutoCommit || !gitops.IsRepo(h.root) {
		return nil
	}
	hash, err := gitops.CommitAll(h.root, message, gitops.Author{
		Name:  h.cfg.Git.AuthorName,
		Email: h.cfg.Git.AuthorEmail,
	})
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	h.logger.Debug("committed", "hash", hash, "message", message)
	return nil
}

func (h *household) checkCategory(categoryID string) error {
	if categoryID != "" && !h.cats.Exists(categoryID) {
		return fmt.Errorf("unknown category %q", categoryID)
	}
	return nil
}

func parseDate(flag, s string) (time.Time, error) {
	t, err := id.ParseInstanceKey(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", flag, err)
	}
	return t, nil
}
