package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/five82/walkin/internal/clinic"
	"github.com/five82/walkin/internal/config"
	"github.com/five82/walkin/internal/logging"
	"github.com/five82/walkin/internal/session"
	"github.com/five82/walkin/internal/state"
	"github.com/five82/walkin/internal/ui"
	"github.com/five82/walkin/internal/workflow"
)

// Options configure a walkin process.
type Options struct {
	ConfigPath string
	// Verbose mirrors log entries to stderr. Ignored by the dashboard.
	Verbose bool
	// Debug lowers the log level to debug.
	Debug bool
}

// Services is everything a walkin front end needs, wired together.
type Services struct {
	Config     config.Config
	Logger     zerolog.Logger
	Client     *clinic.Client
	Store      *state.Store
	Controller *workflow.Controller

	closer io.Closer
}

// Bootstrap loads configuration, sets up logging, builds the client and
// restores any saved session into the store.
func Bootstrap(opts Options) (*Services, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logOpts := logging.Options{Path: cfg.LogPath(), Debug: opts.Debug}
	if opts.Verbose {
		logOpts.Console = os.Stderr
	}
	logger, closer, err := logging.Init(logOpts)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		// Still usable: every call reports the configuration error itself.
		logger.Warn().Err(err).Msg("endpoint not configured")
	}

	client := clinic.NewClient(cfg.EndpointURL,
		clinic.WithTimeout(cfg.RequestTimeout),
		clinic.WithLogger(logger),
	)

	store := &state.Store{}
	if identity, ok := session.Load(cfg.SessionPath); ok {
		store.Login(identity)
		logger.Info().Str("user", identity.DisplayName()).Msg("session restored")
	}

	svc := &Services{
		Config: cfg,
		Logger: logger,
		Client: client,
		Store:  store,
		closer: closer,
	}
	svc.Controller = workflow.NewController(client, svc.Refresh, logger)
	return svc, nil
}

// Close flushes and closes the log file.
func (s *Services) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Refresh re-fetches today's visits into the store.
func (s *Services) Refresh(ctx context.Context) error {
	return Refresh(ctx, s.Store, s.Client, s.Logger)
}

// ErrNotLoggedIn is returned by operations that need a session.
var ErrNotLoggedIn = errors.New("not logged in; run `walkin login` first")

// RequireSession returns the logged-in identity or ErrNotLoggedIn.
func (s *Services) RequireSession() (clinic.Identity, error) {
	snap := s.Store.Snapshot()
	if !snap.LoggedIn {
		return clinic.Identity{}, ErrNotLoggedIn
	}
	return snap.Identity, nil
}

// Login authenticates, persists the identity and starts the session.
func (s *Services) Login(ctx context.Context, username, password string) (clinic.Identity, error) {
	identity, err := s.Client.Login(ctx, username, password)
	if err != nil {
		return clinic.Identity{}, err
	}
	if err := session.Save(s.Config.SessionPath, identity); err != nil {
		// The session still works for this process.
		s.Logger.Warn().Err(err).Msg("save session failed")
	}
	s.Store.Login(identity)
	s.Logger.Info().Str("user", identity.DisplayName()).Msg("logged in")
	return identity, nil
}

// Logout clears the saved session and resets the store.
func (s *Services) Logout() error {
	s.Store.Logout()
	if err := session.Clear(s.Config.SessionPath); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.Logger.Info().Msg("logged out")
	return nil
}

// Run boots the walkin dashboard until the context is cancelled or the user
// quits.
func Run(ctx context.Context, opts Options) error {
	opts.Verbose = false
	svc, err := Bootstrap(opts)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	ctx = logging.WithContext(ctx, svc.Logger)

	// Start background poller
	StartPoller(ctx, svc.Store, svc.Client, svc.Config.RefreshInterval, svc.Logger)

	uiOpts := ui.Options{
		Context:    ctx,
		Config:     svc.Config,
		Client:     svc.Client,
		Store:      svc.Store,
		Controller: svc.Controller,
		Refresh:    svc.Refresh,
		Login:      svc.Login,
		Logout:     svc.Logout,
		Logger:     svc.Logger,
	}
	return ui.Run(uiOpts)
}
