// Package menu provides the interactive text menu.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/user/yuvplay/pkg/pipeline"
	"github.com/user/yuvplay/pkg/ports"
)

// Controller is the part of the player the menu drives.
type Controller interface {
	Play(ctx context.Context, pace time.Duration) error
	Seek(index int) error
	Show(ctx context.Context, index int) error
}

// Menu reads single-letter commands and dispatches them to a Controller.
type Menu struct {
	in     *bufio.Scanner
	out    io.Writer
	ctrl   Controller
	count  int
	pace   time.Duration
	logger ports.Logger
}

// New creates a menu for a video of count frames.
func New(in io.Reader, out io.Writer, ctrl Controller, count int, pace time.Duration, logger ports.Logger) *Menu {
	return &Menu{
		in:     bufio.NewScanner(in),
		out:    out,
		ctrl:   ctrl,
		count:  count,
		pace:   pace,
		logger: logger.WithComponent("menu"),
	}
}

// Run shows the menu until q, end of input, or ctx is done. Playback errors
// are reported and the menu is shown again.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.printMenu()

		line, ok := m.readLine()
		if !ok {
			return m.in.Err()
		}

		switch strings.ToLower(line) {
		case "p":
			m.report(ctx, m.ctrl.Play(ctx, m.pace))
		case "s":
			idx, ok := m.askIndex()
			if !ok {
				continue
			}
			if err := m.ctrl.Seek(idx); err != nil {
				m.reportIndex(idx, err)
				continue
			}
			m.report(ctx, m.ctrl.Play(ctx, m.pace))
		case "f":
			idx, ok := m.askIndex()
			if !ok {
				continue
			}
			if err := m.ctrl.Show(ctx, idx); err != nil {
				m.reportIndex(idx, err)
			}
		case "q":
			m.println(l10n.T("Bye."))
			return nil
		case "":
		default:
			m.println(l10n.F("Unknown command: %q", line))
		}
	}
}

func (m *Menu) printMenu() {
	m.println("")
	m.println(l10n.T("== Menu ================"))
	m.println(l10n.T(" p : Play"))
	m.println(l10n.T(" s : Seek and play"))
	m.println(l10n.T(" f : Show one frame"))
	m.println(l10n.T(" q : Quit"))
	fmt.Fprint(m.out, "> ")
}

// askIndex prompts for a frame number. It reports invalid input and
// returns false.
func (m *Menu) askIndex() (int, bool) {
	fmt.Fprint(m.out, l10n.F("Frame number (0-%d): ", m.count-1))
	line, ok := m.readLine()
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(line)
	if err != nil {
		m.println(l10n.F("Invalid frame number: %q", line))
		return 0, false
	}
	return idx, true
}

func (m *Menu) readLine() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) reportIndex(idx int, err error) {
	if errors.Is(err, pipeline.ErrIndexOutOfRange) {
		m.logger.Warn("Frame %d is out of range (0-%d)", idx, m.count-1)
		m.println(l10n.F("Frame %d is out of range (0-%d)", idx, m.count-1))
		return
	}
	m.println(l10n.F("Error: %v", err))
}

func (m *Menu) report(ctx context.Context, err error) {
	if err == nil || ctx.Err() != nil {
		return
	}
	m.logger.Error("Playback failed: %v", err)
	m.println(l10n.F("Playback failed: %v", err))
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}
