// Package main provides the CLI entry point for yuvplay.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/user/yuvplay/pkg/config"
	"github.com/user/yuvplay/pkg/menu"
)

var version = "dev"

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr, stdoutIsTerminal)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %v", err))
		os.Exit(1)
	}
}

func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// newApp builds the command tree. isTerminal reports whether out is a
// terminal the terminal display can draw on.
func newApp(in io.Reader, out, errOut io.Writer, isTerminal func() bool) *cli.App {
	env := &environment{in: in, out: out, errOut: errOut, isTerminal: isTerminal}

	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintln(c.App.Writer, l10n.F("yuvplay version %s", c.App.Version))
	}

	return &cli.App{
		Name:            "yuvplay",
		Usage:           l10n.T("Inspect raw I420 YUV video files"),
		Description:     l10n.T("yuvplay plays, pauses, seeks and previews raw I420 frames described by a YAML file."),
		Version:         version,
		Reader:          in,
		Writer:          out,
		ErrWriter:       errOut,
		HideHelpCommand: true,
		Flags:           globalFlags(),
		Action:          env.runMenu,
		Commands: []*cli.Command{
			{
				Name:   "menu",
				Usage:  l10n.T("Show the interactive menu (default)"),
				Action: env.runMenu,
			},
			{
				Name:  "play",
				Usage: l10n.T("Play the video"),
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "from",
						Usage: l10n.T("First frame to play"),
					},
				},
				Action: env.runPlay,
			},
			{
				Name:      "peek",
				Usage:     l10n.T("Show a single frame"),
				ArgsUsage: "N",
				Action:    env.runPeek,
			},
			{
				Name:   "info",
				Usage:  l10n.T("Print the configuration summary"),
				Action: env.runInfo,
			},
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "config",
			Aliases:  []string{"c"},
			Value:    config.DefaultPath,
			Usage:    l10n.T("Video description file; a relative InputFile in it is resolved against its directory"),
			Category: l10n.T("Input"),
		},
		&cli.StringFlag{
			Name:     "mode",
			Aliases:  []string{"m"},
			Usage:    l10n.T("Frame access mode (random, stream or preload)"),
			Category: l10n.T("Input"),
		},
		&cli.BoolFlag{
			Name:     "prefetch",
			Usage:    l10n.T("Decode the next frame while the current one is shown"),
			Category: l10n.T("Input"),
		},
		&cli.StringFlag{
			Name:     "display",
			Aliases:  []string{"d"},
			Usage:    l10n.T("Display sink (terminal, png or null)"),
			Category: l10n.T("Display"),
		},
		&cli.StringFlag{
			Name:     "out-dir",
			Aliases:  []string{"o"},
			Usage:    l10n.T("Directory for PNG frames"),
			Category: l10n.T("Display"),
		},
		&cli.DurationFlag{
			Name:     "pace",
			Usage:    l10n.T("Delay between frames (default: 1/FrameRate)"),
			Category: l10n.T("Display"),
		},
		&cli.StringFlag{
			Name:     "log-level",
			Value:    "info",
			Usage:    l10n.T("Log level (debug, info, warn, error)"),
			Category: l10n.T("Logging"),
		},
		&cli.BoolFlag{
			Name:     "quiet",
			Aliases:  []string{"q"},
			Usage:    l10n.T("Suppress log output"),
			Category: l10n.T("Logging"),
		},
		&cli.StringFlag{
			Name:     "summary",
			Usage:    l10n.T("Write a Markdown playback summary to this file"),
			Category: l10n.T("Logging"),
		},
	}
}

// environment holds the process streams shared by all commands.
type environment struct {
	in         io.Reader
	out        io.Writer
	errOut     io.Writer
	isTerminal func() bool
}

func (e *environment) runMenu(c *cli.Context) error {
	s, err := openSession(c, e)
	if err != nil {
		return err
	}
	defer s.close()

	src := s.cfg.Source
	m := menu.New(e.in, e.out, s.player, src.FrameCount, s.cfg.PlaybackPace(), s.log)
	return s.finish(m.Run(s.ctx))
}

func (e *environment) runPlay(c *cli.Context) error {
	s, err := openSession(c, e)
	if err != nil {
		return err
	}
	defer s.close()

	if c.IsSet("from") {
		if err := s.player.Seek(c.Int("from")); err != nil {
			return err
		}
	}
	return s.finish(s.player.Play(s.ctx, s.cfg.PlaybackPace()))
}

func (e *environment) runPeek(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("peek: expected one frame number, got %d arguments", c.NArg())
	}
	index, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return fmt.Errorf("peek: invalid frame number %q", c.Args().First())
	}

	s, err := openSession(c, e)
	if err != nil {
		return err
	}
	defer s.close()

	return s.finish(s.player.Show(s.ctx, index))
}

func (e *environment) runInfo(c *cli.Context) error {
	log, _, cfg, err := loadConfig(c, e)
	if err != nil {
		return err
	}
	config.LogSummary(log, cfg)
	return nil
}
