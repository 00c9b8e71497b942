package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/storyvault/internal/config"
	"github.com/roach88/storyvault/internal/facade"
	"github.com/roach88/storyvault/internal/store"
)

// session is one opened database with a running facade bridge.
type session struct {
	cfg    config.Config
	log    *slog.Logger
	store  *store.Store
	bridge *facade.Bridge
	out    *OutputFormatter
	ctx    context.Context
	cancel context.CancelFunc
	done   chan error
}

// openSession resolves configuration, configures logging, opens the store
// (running migrations) and starts the bridge's worker loop.
func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	if opts.DB != "" {
		cfg.DB = opts.DB
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg, opts.Verbose)

	logger.Debug("opening database", "path", cfg.DB)
	st, err := store.Open(cfg.DB,
		store.WithLogger(logger),
		store.WithDefaultProjectName(cfg.DefaultProject),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeOpen, "failed to open database", err)
	}

	bridgeOpts := []facade.Option{facade.WithLogger(logger)}
	if opts.IDs != nil {
		bridgeOpts = append(bridgeOpts, facade.WithIDGenerator(opts.IDs))
	}
	b := facade.New(st, bridgeOpts...)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	s := &session{
		cfg:    cfg,
		log:    logger,
		store:  st,
		bridge: b,
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan error, 1),
	}
	go func() { s.done <- b.Run(ctx) }()
	return s, nil
}

// Close stops the bridge after it drains, then closes the database.
func (s *session) Close() {
	s.bridge.Stop()
	<-s.done
	s.cancel()
	if err := s.store.Close(); err != nil {
		s.log.Error("error closing database", "error", err)
	}
}

// call sends one command and decodes its result into out. A failed request
// becomes an ExitFailure wrapping the facade error.
func (s *session) call(out any, command string, args ...any) error {
	if err := s.bridge.CallInto(s.ctx, out, command, args...); err != nil {
		return WrapExitError(ExitFailure, "", command+" failed", err)
	}
	return nil
}

// withSession opens a session, runs fn and closes the session.
func withSession(cmd *cobra.Command, opts *RootOptions, fn func(*session) error) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// newLogger builds the text slog handler on w; --verbose forces debug.
func newLogger(w io.Writer, cfg config.Config, verbose bool) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// parseID parses a positional record id.
func parseID(name, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, name+" must be a positive integer, got "+strconv.Quote(s))
	}
	return id, nil
}
