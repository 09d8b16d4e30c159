// Package app owns the monitor run loop: the tview application, the tailing
// reader that follows the telemetry source, and the optional mirror file.
package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"battmon/config"
	"battmon/logging"
	"battmon/record"
	"battmon/render"

	"github.com/gdamore/tcell/v2"
	"github.com/hpcloud/tail"
	"github.com/rivo/tview"
)

// App wires the tailing reader to the dashboard. The source tail, the mirror
// handle, and the screen are owned here for the lifetime of a run; no other
// component keeps a reference across a frame boundary.
type App struct {
	tviewApp   *tview.Application
	dashboard  *render.Dashboard
	cfg        config.Config
	sourceFile string
	mirror     *os.File
	cancel     context.CancelFunc

	// present hands one frame of readings to the event loop; replaced in
	// tests to observe frames without a live screen.
	present func(readings []int)

	mu    sync.Mutex
	fatal error
}

// New creates a monitor for the given source file and configuration.
func New(sourceFile string, cfg config.Config) *App {
	a := &App{
		tviewApp:   tview.NewApplication(),
		dashboard:  render.NewDashboard(render.NewGeometry(cfg)),
		cfg:        cfg,
		sourceFile: sourceFile,
	}
	a.present = func(readings []int) {
		a.tviewApp.QueueUpdateDraw(func() {
			a.dashboard.SetReadings(readings)
		})
	}
	return a
}

// Run blocks until the user quits or a fatal I/O error stops the loop. The
// terminal is restored on every exit path before the error, if any, is
// returned.
func (a *App) Run() error {
	logging.Event("Monitor started: source=%s", a.sourceFile)

	if err := a.openMirror(); err != nil {
		return err
	}
	defer a.closeMirror()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.cancel = cancel

	a.tviewApp.SetInputCapture(a.handleKey)
	a.tviewApp.SetRoot(a.dashboard, true)

	go a.followSource(ctx)

	runErr := a.tviewApp.Run()
	cancel()

	if err := a.fatalError(); err != nil {
		logging.Event("Monitor stopped on error: %v", err)
		return err
	}
	if runErr != nil {
		return runErr
	}
	logging.Event("Monitor stopped")
	return nil
}

// openMirror opens the output file in append mode when one is configured.
func (a *App) openMirror() error {
	if a.cfg.OutputFile == "" {
		return nil
	}
	f, err := os.OpenFile(a.cfg.OutputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	a.mirror = f
	return nil
}

func (a *App) closeMirror() {
	if a.mirror != nil {
		a.mirror.Close()
		a.mirror = nil
	}
}

// handleKey implements the quit bindings; the dashboard takes no other
// input.
func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		a.quit()
		return nil
	case tcell.KeyRune:
		if event.Rune() == 'q' {
			a.quit()
			return nil
		}
	}
	return event
}

func (a *App) quit() {
	logging.Event("Quit requested")
	a.cancel()
	a.tviewApp.Stop()
}

// fail records the first fatal error and stops the application. The screen
// is torn down by tview before Run returns the error.
func (a *App) fail(err error) {
	a.mu.Lock()
	if a.fatal == nil {
		a.fatal = err
	}
	a.mu.Unlock()
	logging.Event("Fatal: %v", err)
	a.tviewApp.Stop()
}

func (a *App) fatalError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fatal
}

// followSource reads the telemetry source from the beginning and keeps
// following it as it grows. End-of-file is never terminal: the tail keeps
// polling and reopens the file when it is replaced. Lines longer than the
// configured maximum arrive split into maximum-length records. Failure to
// open the source and read errors other than EOF stop the whole run.
func (a *App) followSource(ctx context.Context) {
	t, err := tail.TailFile(a.sourceFile, tail.Config{
		Follow:      true,
		ReOpen:      true,
		Poll:        true,
		MustExist:   true,
		MaxLineSize: a.cfg.MaxLineLength,
		Logger:      tail.DiscardingLogger,
	})
	if err != nil {
		a.fail(fmt.Errorf("open source file: %w", err))
		return
	}
	defer t.Cleanup()

	for {
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case line, ok := <-t.Lines:
			if !ok {
				if err := t.Err(); err != nil {
					a.fail(fmt.Errorf("read source file: %w", err))
				}
				return
			}
			if line.Err != nil {
				a.fail(fmt.Errorf("read source file: %w", line.Err))
				return
			}
			if err := a.handleRecord(ctx, line.Text); err != nil {
				a.fail(err)
				return
			}
		}
	}
}

// handleRecord runs one record through the parse, mirror, render pipeline.
// Invalid records are skipped silently: partial writes by the producer are
// expected steady-state noise, not errors.
func (a *App) handleRecord(ctx context.Context, raw string) error {
	normalized, ok := record.Normalize(raw)
	if !ok {
		return nil
	}

	if a.mirror != nil {
		// The mirror carries the raw line verbatim, not the normalized form.
		if _, err := a.mirror.WriteString(raw + "\n"); err != nil {
			return fmt.Errorf("append to output file: %w", err)
		}
	}

	a.present(record.Readings(normalized))

	if a.cfg.FrameInterval > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(a.cfg.FrameInterval):
		}
	}
	return nil
}
