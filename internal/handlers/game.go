package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vancomm/minesweeper-autoplay/internal/autoplay"
	"github.com/vancomm/minesweeper-autoplay/internal/config"
	"github.com/vancomm/minesweeper-autoplay/internal/mines"
	"github.com/vancomm/minesweeper-autoplay/internal/repository"
	"github.com/vancomm/minesweeper-autoplay/internal/telemetry"
)

type GameHandler struct {
	logger   *slog.Logger
	store    Store
	tokens   *config.SessionTokens
	ws       *config.WebSocket
	rnd      mines.Rand
	gameOpts []mines.Option
	botOpts  []autoplay.Option
	tracer   trace.Tracer
	locks    sessionLocks
	now      func() time.Time
}

type GameHandlerOption func(*GameHandler)

func WithGameOptions(opts ...mines.Option) GameHandlerOption {
	return func(h *GameHandler) {
		h.gameOpts = append(h.gameOpts, opts...)
	}
}

func WithAutoplayOptions(opts ...autoplay.Option) GameHandlerOption {
	return func(h *GameHandler) {
		h.botOpts = append(h.botOpts, opts...)
	}
}

func NewGameHandler(
	logger *slog.Logger,
	store Store,
	tokens *config.SessionTokens,
	ws *config.WebSocket,
	rnd mines.Rand,
	opts ...GameHandlerOption,
) *GameHandler {
	h := &GameHandler{
		logger: logger,
		store:  store,
		tokens: tokens,
		ws:     ws,
		rnd:    rnd,
		tracer: telemetry.Tracer("handlers"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func sessionID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// resolveParams picks the board for a new game: a stored level, explicit
// dimensions, or a random one.
func (h *GameHandler) resolveParams(ctx context.Context, dto NewGameDTO) (mines.GameParams, *string, int, error) {
	if dto.Level != "" {
		lvl, err := h.store.FetchLevel(ctx, dto.Level)
		if errors.Is(err, repository.ErrNotFound) {
			return mines.GameParams{}, nil, http.StatusNotFound, fmt.Errorf("level %q not found", dto.Level)
		}
		if err != nil {
			return mines.GameParams{}, nil, http.StatusInternalServerError, err
		}
		name := lvl.LevelName
		return lvl.Spec().Params(), &name, 0, nil
	}
	params, err := dto.Params()
	if err != nil {
		return mines.GameParams{}, nil, http.StatusBadRequest, err
	}
	if params == nil {
		return mines.RandomParams(h.rnd), nil, 0, nil
	}
	return *params, nil, 0, nil
}

func (h *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "game.new")
	var spanErr error
	defer func() { endSpan(span, spanErr) }()

	dto, err := ParseNewGameDTO(r.URL.Query())
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	params, levelName, status, err := h.resolveParams(ctx, dto)
	if err != nil {
		if status == http.StatusInternalServerError {
			spanErr = err
			internalError(w, h.logger, "unable to fetch level", err)
			return
		}
		sendError(w, h.logger, status, err)
		return
	}
	span.SetAttributes(attribute.String("game.params", params.Seed()))

	board, err := mines.Generate(params, h.rnd)
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	game := mines.NewGame(board, h.gameOpts...)

	session, err := h.store.CreateGameSession(ctx, repository.CreateGameSessionParams{
		LevelName: levelName,
		Game:      game,
	})
	if err != nil {
		spanErr = err
		internalError(w, h.logger, "unable to create game session", err)
		return
	}

	token, err := h.tokens.Sign(session.GameSessionId)
	if err != nil {
		spanErr = err
		internalError(w, h.logger, "unable to sign session token", err)
		return
	}

	h.logger.Debug("created game session",
		slog.Int64("sessionId", session.GameSessionId),
		slog.String("params", params.Seed()))

	res := NewGameSessionDTO(session, game)
	res.Token = token
	sendStatusJSON(w, h.logger, http.StatusCreated, res)
}

// load fetches a session and decodes its game, replying on failure.
func (h *GameHandler) load(w http.ResponseWriter, r *http.Request) (*repository.GameSession, *mines.Game, bool) {
	id, err := sessionID(r)
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid session id"))
		return nil, nil, false
	}
	session, err := h.store.FetchGameSession(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		sendError(w, h.logger, http.StatusNotFound, fmt.Errorf("session %d not found", id))
		return nil, nil, false
	}
	if err != nil {
		internalError(w, h.logger, "unable to fetch session from db", err)
		return nil, nil, false
	}
	game, err := session.Game()
	if err != nil {
		internalError(w, h.logger, "db returned invalid game_session.state", err)
		return nil, nil, false
	}
	return session, game, true
}

func (h *GameHandler) save(ctx context.Context, session *repository.GameSession, game *mines.Game) (*repository.GameSession, error) {
	params, err := repository.UpdateFromGame(game, h.now())
	if err != nil {
		return nil, err
	}
	return h.store.UpdateGameSession(ctx, session.GameSessionId, params)
}

func (h *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	session, game, ok := h.load(w, r)
	if !ok {
		return
	}
	sendJSONOrLog(w, h.logger, NewGameSessionDTO(session, game))
}

func (h *GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "game.move")
	var spanErr error
	defer func() { endSpan(span, spanErr) }()

	dto, err := ParseMoveDTO(r.URL.Query())
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	kind, _ := ParseMoveKind(dto.Move)
	span.SetAttributes(
		attribute.String("move", kind.String()),
		attribute.Int("x", dto.X),
		attribute.Int("y", dto.Y),
	)

	if id, err := sessionID(r); err == nil {
		defer h.locks.lock(id)()
	}
	session, game, ok := h.load(w, r.WithContext(ctx))
	if !ok {
		return
	}

	switch kind {
	case autoplay.Reveal:
		_, err = game.Reveal(dto.X, dto.Y)
	case autoplay.Flag:
		_, err = game.ToggleFlag(dto.X, dto.Y)
	}
	if errors.Is(err, mines.ErrOutOfBounds) {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	session, err = h.save(ctx, session, game)
	if err != nil {
		spanErr = err
		internalError(w, h.logger, "unable to update session in db", err)
		return
	}
	span.SetAttributes(attribute.String("game.status", game.Status().String()))
	sendJSONOrLog(w, h.logger, NewGameSessionDTO(session, game))
}

// Autoplay lets the bot make up to steps moves. Each request starts a fresh
// controller, so the first move is always a reveal.
func (h *GameHandler) Autoplay(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "game.autoplay")
	var spanErr error
	defer func() { endSpan(span, spanErr) }()

	dto, err := ParseAutoplayDTO(r.URL.Query())
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if id, err := sessionID(r); err == nil {
		defer h.locks.lock(id)()
	}
	session, game, ok := h.load(w, r.WithContext(ctx))
	if !ok {
		return
	}

	bot := autoplay.New(game, h.rnd, h.botOpts...)
	steps := bot.Run(dto.Steps)
	span.SetAttributes(
		attribute.Int("autoplay.requested", dto.Steps),
		attribute.Int("autoplay.executed", len(steps)),
	)

	session, err = h.save(ctx, session, game)
	if err != nil {
		spanErr = err
		internalError(w, h.logger, "unable to update session in db", err)
		return
	}

	res := AutoplayResultDTO{
		Session: NewGameSessionDTO(session, game),
		Steps:   make([]StepDTO, len(steps)),
	}
	for i, step := range steps {
		res.Steps[i] = NewStepDTO(step)
	}
	sendJSONOrLog(w, h.logger, res)
}
