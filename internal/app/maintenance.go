package app

import (
	"context"
	"strings"

	"github.com/k3a/html2text"

	"github.com/happycall-qa/happycall/internal/datastore/repository"
	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/logger"
	"github.com/happycall-qa/happycall/internal/securefs"
)

// ScriptText is the active script rendered for a terminal.
type ScriptText struct {
	Title string
	Body  string
}

// ActiveScriptText returns the active script with its markup converted to
// plain text. It reads the repository directly because the CLI acts as the
// operator, not as a signed-in account.
func (a *App) ActiveScriptText(ctx context.Context) (*ScriptText, error) {
	script, err := a.Repos.Scripts.GetActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrScriptNotFound) {
			return nil, errors.New(err).
				Component(componentName).
				Category(errors.CategoryNotFound).
				Context("operation", "script_show").
				Build()
		}
		return nil, err
	}
	return &ScriptText{
		Title: script.Title,
		Body:  strings.TrimSpace(html2text.HTML2Text(script.Content)),
	}, nil
}

// OrphanReport lists recordings no submission references.
type OrphanReport struct {
	Orphans []securefs.FileInfo
	Removed []string
}

// Orphans finds unreferenced recordings and deletes them when remove is set.
func (a *App) Orphans(ctx context.Context, remove bool) (*OrphanReport, error) {
	orphans, err := a.Recordings.Orphans(ctx, a.Repos.Submissions)
	if err != nil {
		return nil, err
	}
	report := &OrphanReport{Orphans: orphans}
	if !remove || len(orphans) == 0 {
		return report, nil
	}

	report.Removed, err = a.Recordings.RemoveOrphans(ctx, a.Repos.Submissions)
	a.log.Info("orphan recordings removed",
		logger.Int("found", len(orphans)),
		logger.Int("removed", len(report.Removed)))
	return report, err
}
