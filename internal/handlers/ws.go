package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/vancomm/minesweeper-autoplay/internal/autoplay"
	"github.com/vancomm/minesweeper-autoplay/internal/mines"
	"github.com/vancomm/minesweeper-autoplay/internal/repository"
)

type wsCommand string

const (
	wsNoop     wsCommand = "g"
	wsReveal   wsCommand = "r"
	wsFlag     wsCommand = "f"
	wsAutoplay wsCommand = "a"
)

var errUnknownCommand = errors.New("unknown command")

type WSReplyDTO struct {
	Session *GameSessionDTO `json:"session"`
	Steps   []StepDTO       `json:"steps,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// gameExecutor runs text commands against one session. The autoplay
// controller lives as long as the connection, so its queue carries over
// between "a" commands.
type gameExecutor struct {
	game  *mines.Game
	bot   *autoplay.Controller
	steps []StepDTO
}

func parseXY(args []string) (x int, y int, err error) {
	if len(args) != 2 {
		err = fmt.Errorf("want 2 arguments, got %d", len(args))
		return
	}
	if x, err = strconv.Atoi(args[0]); err != nil {
		err = fmt.Errorf("first argument must be an int")
		return
	}
	if y, err = strconv.Atoi(args[1]); err != nil {
		err = fmt.Errorf("second argument must be an int")
		return
	}
	return
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	if len(args) != 1 {
		return 0, fmt.Errorf("want at most 1 argument, got %d", len(args))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > MaxAutoplaySteps {
		return 0, fmt.Errorf("steps must be between 1 and %d", MaxAutoplaySteps)
	}
	return n, nil
}

func (e *gameExecutor) execute(line string) error {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil
	}
	cmd, args := wsCommand(tokens[0]), tokens[1:]
	switch cmd {
	case wsNoop:
		return nil
	case wsReveal:
		x, y, err := parseXY(args)
		if err != nil {
			return err
		}
		_, err = e.game.Reveal(x, y)
		return err
	case wsFlag:
		x, y, err := parseXY(args)
		if err != nil {
			return err
		}
		_, err = e.game.ToggleFlag(x, y)
		return err
	case wsAutoplay:
		n, err := parseSteps(args)
		if err != nil {
			return err
		}
		for _, step := range e.bot.Run(n) {
			e.steps = append(e.steps, NewStepDTO(step))
		}
		return nil
	default:
		return fmt.Errorf("%w %q", errUnknownCommand, tokens[0])
	}
}

// apply runs every line of a message, stopping at the first bad one.
func (e *gameExecutor) apply(message string) error {
	e.steps = nil
	for _, line := range strings.Split(message, "\n") {
		if err := e.execute(strings.TrimSpace(line)); err != nil {
			return err
		}
		if e.game.Over() {
			break
		}
	}
	return nil
}

func (h *GameHandler) wsRunGameLoop(
	ctx context.Context,
	conn *websocket.Conn,
	session *repository.GameSession,
	exec *gameExecutor,
) error {
	id := session.GameSessionId
	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.TextMessage {
			return nil
		}

		var reply WSReplyDTO
		unlock := h.locks.lock(id)
		if err := exec.apply(string(buf)); err != nil {
			reply.Error = err.Error()
		}
		session, err = h.save(ctx, session, exec.game)
		unlock()
		if err != nil {
			return fmt.Errorf("unable to update session in db: %w", err)
		}

		reply.Session = NewGameSessionDTO(session, exec.game)
		reply.Steps = exec.steps
		if err := conn.WriteJSON(reply); err != nil {
			return fmt.Errorf("unable to write json: %w", err)
		}
	}
}

func (h *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	session, game, ok := h.load(w, r)
	if !ok {
		return
	}

	conn, err := h.ws.Upgrader.Upgrade(w, r, nil) // headers sent here
	if err != nil {
		h.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	h.logger.Debug("established ws connection",
		slog.Int64("sessionId", session.GameSessionId))

	exec := &gameExecutor{
		game: game,
		bot:  autoplay.New(game, h.rnd, h.botOpts...),
	}
	err = h.wsRunGameLoop(r.Context(), conn, session, exec)
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		h.logger.Warn("error in ws loop", slog.Any("error", err))
	}
}
