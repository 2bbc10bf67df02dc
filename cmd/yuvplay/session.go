package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/user/yuvplay/pkg/adapters/i420"
	"github.com/user/yuvplay/pkg/adapters/logger"
	"github.com/user/yuvplay/pkg/adapters/memstore"
	"github.com/user/yuvplay/pkg/adapters/nullsink"
	"github.com/user/yuvplay/pkg/adapters/osfilesystem"
	"github.com/user/yuvplay/pkg/adapters/pngsink"
	"github.com/user/yuvplay/pkg/adapters/rawfile"
	"github.com/user/yuvplay/pkg/adapters/stagetrace"
	"github.com/user/yuvplay/pkg/adapters/termdisplay"
	"github.com/user/yuvplay/pkg/config"
	"github.com/user/yuvplay/pkg/player"
	"github.com/user/yuvplay/pkg/ports"
	"github.com/user/yuvplay/pkg/summarizer"
)

// session is one opened video with its player and the signal context.
type session struct {
	ctx    context.Context
	cancel context.CancelFunc

	log    ports.Logger
	fs     ports.FileSystem
	cfg    config.Config
	player *player.Player

	collector   *summarizer.Collector
	summaryPath string
}

// loadConfig creates the logger and loads the configuration with the
// command-line overrides applied.
func loadConfig(c *cli.Context, e *environment) (ports.Logger, ports.FileSystem, config.Config, error) {
	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsoleWriter(ports.ParseLogLevel(c.String("log-level")), e.out, e.errOut, e.isTerminal())
	}

	fs := osfilesystem.New()
	cfg, err := config.Load(fs, c.String("config"))
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	if err := cfg.Apply(overrides(c)); err != nil {
		return nil, nil, config.Config{}, err
	}
	return log, fs, cfg, nil
}

func overrides(c *cli.Context) config.Overrides {
	var o config.Overrides
	if c.IsSet("mode") {
		v := c.String("mode")
		o.AccessMode = &v
	}
	if c.IsSet("display") {
		v := c.String("display")
		o.Display = &v
	}
	if c.IsSet("out-dir") {
		v := c.String("out-dir")
		o.OutputDir = &v
	}
	if c.IsSet("prefetch") {
		v := c.Bool("prefetch")
		o.Prefetch = &v
	}
	if c.IsSet("pace") {
		v := c.Duration("pace")
		o.Pace = &v
	}
	return o
}

// openSession wires the frame store, converter, display and observers
// into a player.
func openSession(c *cli.Context, e *environment) (*session, error) {
	log, fs, cfg, err := loadConfig(c, e)
	if err != nil {
		return nil, err
	}
	config.LogSummary(log, cfg)

	file, err := rawfile.Open(fs, cfg.Source, log)
	if err != nil {
		return nil, err
	}
	var store ports.FrameStore = file
	if cfg.AccessMode == config.AccessPreload {
		mem, err := memstore.Preload(file, log)
		file.Close()
		if err != nil {
			return nil, err
		}
		store = mem
	}

	rng, err := i420.ParseRange(cfg.ColorRange)
	if err != nil {
		store.Close()
		return nil, err
	}

	s := &session{
		log:         log,
		fs:          fs,
		cfg:         cfg,
		summaryPath: c.String("summary"),
	}

	observers := ports.Observers{stagetrace.New(log)}
	if s.summaryPath != "" {
		s.collector = summarizer.NewCollector()
		observers = append(observers, s.collector)
	}

	opts := player.DefaultOptions()
	opts.Sequential = cfg.AccessMode == config.AccessStream
	opts.Prefetch = cfg.Prefetch
	opts.Observer = observers
	s.player = player.New(store, i420.New(rng), s.display(e), log, opts)

	s.ctx, s.cancel = withSignals(log)
	return s, nil
}

// display selects the sink. The terminal display needs a terminal on
// stdout and falls back to PNG files otherwise.
func (s *session) display(e *environment) ports.DisplaySink {
	name := s.cfg.Display
	if name == config.DisplayTerminal && !e.isTerminal() {
		s.log.Warn("Standard output is not a terminal, using the %s display", config.DisplayPNG)
		name = config.DisplayPNG
	}

	switch name {
	case config.DisplayPNG:
		return pngsink.New(s.cfg.OutputDir, s.fs, pngsink.Options{Label: true})
	case config.DisplayNull:
		return nullsink.New()
	default:
		opts := termdisplay.DefaultOptions()
		opts.Input = e.in
		opts.Output = e.out
		return termdisplay.New(opts)
	}
}

// finish writes the summary and turns an interrupt into a clean exit.
func (s *session) finish(err error) error {
	if s.collector != nil {
		s.writeSummary()
	}
	if err != nil && errors.Is(err, context.Canceled) && s.ctx.Err() != nil {
		return nil
	}
	return err
}

func (s *session) writeSummary() {
	st := s.cfg.Settings
	summary := summarizer.NewBuilder().
		WithSource(s.cfg.Source).
		WithSettings(summarizer.Settings{
			AccessMode: st.AccessMode,
			Display:    st.Display,
			ColorRange: st.ColorRange,
			Prefetch:   st.Prefetch,
			Pace:       s.cfg.PlaybackPace(),
		}).
		WithPlayback(s.collector.Playback()).
		Build()

	w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(), s.fs)
	if err := w.Write(s.summaryPath, summary); err != nil {
		s.log.Error("Failed to write summary: %v", err)
		return
	}
	s.log.Info("Summary written to %s", s.summaryPath)
}

func (s *session) close() {
	s.cancel()
	if err := s.player.Close(); err != nil {
		s.log.Warn("Failed to close frame store: %v", err)
	}
}

// withSignals returns a context cancelled on SIGINT or SIGTERM.
func withSignals(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		watchSignals(ctx, cancel, sigCh, log)
	}()
	return ctx, cancel
}

// watchSignals cancels on the first signal and returns when ctx is done.
func watchSignals(ctx context.Context, cancel context.CancelFunc, sigCh <-chan os.Signal, log ports.Logger) {
	select {
	case <-sigCh:
		log.Warn("Interrupted, shutting down...")
		cancel()
	case <-ctx.Done():
	}
}
