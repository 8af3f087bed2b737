package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-autoplay/internal/autoplay"
	"github.com/vancomm/minesweeper-autoplay/internal/config"
	"github.com/vancomm/minesweeper-autoplay/internal/handlers"
	"github.com/vancomm/minesweeper-autoplay/internal/middleware"
	"github.com/vancomm/minesweeper-autoplay/internal/mines"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	logger    *slog.Logger
	store     handlers.Store
	tokens    *config.SessionTokens
	ws        *config.WebSocket
	rnd       mines.Rand
	basePath  string
	levelsDir string
	origins   []string
	gameOpts  []mines.Option
	botOpts   []autoplay.Option
}

type Option func(*App)

func WithBasePath(path string) Option {
	return func(a *App) { a.basePath = path }
}

// WithLevelsDir exports every created level below dir.
func WithLevelsDir(dir string) Option {
	return func(a *App) { a.levelsDir = dir }
}

func WithAllowedOrigins(origins ...string) Option {
	return func(a *App) { a.origins = origins }
}

func WithGameOptions(opts ...mines.Option) Option {
	return func(a *App) { a.gameOpts = append(a.gameOpts, opts...) }
}

func WithAutoplayOptions(opts ...autoplay.Option) Option {
	return func(a *App) { a.botOpts = append(a.botOpts, opts...) }
}

func WithRand(rnd mines.Rand) Option {
	return func(a *App) { a.rnd = rnd }
}

func New(
	logger *slog.Logger,
	store handlers.Store,
	tokens *config.SessionTokens,
	ws *config.WebSocket,
	opts ...Option,
) *App {
	a := &App{
		logger: logger,
		store:  store,
		tokens: tokens,
		ws:     ws,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rnd == nil {
		a.rnd = handlers.NewLockedRand(createRand())
	}
	return a
}

func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.Router(),
		middleware.Logging(a.logger),
		middleware.Cors(a.origins...),
	)
}

// Serve listens on addr until ctx is done, then shuts the server down.
func (a *App) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:        addr,
		Handler:     a.Handler(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info(fmt.Sprintf("minesweeper server listening at http://localhost%s%s", addr, a.basePath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(sCtx)
	})
	return g.Wait()
}
