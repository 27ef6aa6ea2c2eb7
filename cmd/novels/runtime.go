package cmd

import (
	"context"
	"fmt"

	"github.com/ethan2004g/interactive-web-novels/pkg/api"
	"github.com/ethan2004g/interactive-web-novels/pkg/config"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/logging"
	"github.com/ethan2004g/interactive-web-novels/pkg/prefs"
	"github.com/ethan2004g/interactive-web-novels/pkg/services"
	"github.com/ethan2004g/interactive-web-novels/pkg/session"
	"go.uber.org/zap"
)

const userAgent = "novels-cli/1.0"

// runtime is everything a command needs, built once per invocation.
type runtime struct {
	cfg      config.Config
	logger   *zap.Logger
	repo     *data.Repository
	services *services.Services
	session  *session.Session
	prefs    *prefs.Store
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}

	logger, err := logging.New(verbose, cfg.LogPath())
	if err != nil {
		return nil, err
	}

	r := &runtime{cfg: cfg, logger: logger}

	var tokens data.TokenStore
	if ephemeral {
		tokens = data.NewMemoryTokens()
	} else {
		repo, err := data.Open(cfg.DatabasePath())
		if err != nil {
			logger.Error("open token store", zap.String("path", cfg.DatabasePath()), zap.Error(err))
			return nil, fmt.Errorf("open token store: %w", err)
		}
		r.repo = repo
		tokens = repo
	}

	client, err := api.NewClient(cfg.APIURL, tokens,
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(logger.Named("api")),
		api.WithUserAgent(userAgent),
	)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("api client: %w", err)
	}

	r.services = services.New(client, logger.Named("services"))
	r.session = session.New(r.services.Auth, r.services.Users, nil, logger.Named("session"))
	r.prefs = prefs.Open(prefs.DefaultPath())

	logger.Debug("runtime ready",
		zap.String("api", cfg.APIURL),
		zap.Bool("ephemeral", ephemeral),
		zap.Bool("has_token", tokens.HasAccessToken()))
	return r, nil
}

// requireUser loads the session and fails when nobody is signed in.
func (r *runtime) requireUser(ctx context.Context) (*data.User, error) {
	if err := r.session.Load(ctx); err != nil {
		return nil, fmt.Errorf("session expired, run 'novels login': %w", err)
	}
	u := r.session.User()
	if u == nil {
		return nil, fmt.Errorf("not signed in, run 'novels login'")
	}
	return u, nil
}

// requireAuthor is requireUser limited to authors and admins.
func (r *runtime) requireAuthor(ctx context.Context) (*data.User, error) {
	u, err := r.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !r.session.HasRole(data.RoleAuthor, data.RoleAdmin) {
		return nil, fmt.Errorf("%s is a %s; only authors can manage books", u.Username, u.Role)
	}
	return u, nil
}

func (r *runtime) Close() {
	if r.repo != nil {
		if err := r.repo.Close(); err != nil {
			r.logger.Warn("close token store", zap.Error(err))
		}
	}
	_ = r.logger.Sync()
}
