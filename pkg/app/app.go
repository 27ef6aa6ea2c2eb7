// Package app runs the interactive terminal client.
package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/screens"
	"github.com/ethan2004g/interactive-web-novels/pkg/prefs"
	"github.com/ethan2004g/interactive-web-novels/pkg/services"
	"github.com/ethan2004g/interactive-web-novels/pkg/session"
	"go.uber.org/zap"
)

type Options struct {
	Services  *services.Services
	Session   *session.Session
	Prefs     *prefs.Store
	Logger    *zap.Logger
	PageSize  int
	ExportDir string
}

type App struct {
	opts Options
}

func NewApp(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &App{opts: opts}
}

// Run blocks until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	root := screens.NewRootScreen(screens.Deps{
		Ctx:       ctx,
		Services:  a.opts.Services,
		Session:   a.opts.Session,
		Prefs:     a.opts.Prefs,
		Logger:    a.opts.Logger,
		PageSize:  a.opts.PageSize,
		ExportDir: a.opts.ExportDir,
	})
	a.opts.Session.SetNavigator(root.Navigator())
	defer a.opts.Session.SetNavigator(nil)

	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
