package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vancomm/minesweeper-autoplay/internal/autoplay"
	"github.com/vancomm/minesweeper-autoplay/internal/session"
	"github.com/vancomm/minesweeper-autoplay/internal/telemetry"
)

const DefaultTick = 50 * time.Millisecond

// App is the terminal host loop. It is the only driver of the session: key
// and mouse events are applied on the next tick, in between ticks the
// session is left alone.
type App struct {
	Screen   *Screen
	Renderer *Renderer
	Input    *Input
	Session  *session.Session
	Tick     time.Duration
	Mode     autoplay.Mode
}

func (a *App) Run(ctx context.Context) error {
	tracer := telemetry.Tracer("tui")

	tick := a.Tick
	if tick <= 0 {
		tick = DefaultTick
	}

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go a.Screen.Events(events, quit)
	defer close(quit)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if _, ok := ev.(*tcell.EventResize); ok {
				a.Screen.Sync()
			}
			a.Input.Handle(ev)
			if !a.Input.QuitPressed() {
				continue
			}
		case <-ticker.C:
		}

		if a.Input.QuitPressed() {
			return nil
		}

		now := time.Now()
		dt := now.Sub(last)
		last = now

		if a.Input.AutoplayToggled() {
			a.toggleMode()
		}
		if a.Input.RestartPressed() {
			_, span := tracer.Start(ctx, "tui.restart")
			err := a.Session.Restart()
			span.SetAttributes(attribute.String("level", a.Session.Level().Name))
			span.End()
			if err != nil {
				return err
			}
		}

		a.Session.Update(dt, a.Input, a.Mode)
		if a.Input.Moved() && a.Session.Game() != nil {
			a.Renderer.Render(a.Session.Frame())
		}
		a.Input.EndFrame()
	}
}

func (a *App) toggleMode() {
	if a.Mode == autoplay.Auto {
		a.Mode = autoplay.Manual
	} else {
		a.Mode = autoplay.Auto
	}
}
