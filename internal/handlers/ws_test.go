package handlers

import (
	"math/rand/v2"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-autoplay/internal/autoplay"
	"github.com/vancomm/minesweeper-autoplay/internal/mines"
)

func stripExecutor(t *testing.T) *gameExecutor {
	t.Helper()
	board, err := mines.BoardFromMines(5, 1, []mines.Position{{2, 0}, {4, 0}})
	require.NoError(t, err)
	game := mines.NewGame(board)
	return &gameExecutor{
		game: game,
		bot:  autoplay.New(game, rand.New(rand.NewPCG(3, 4))),
	}
}

func TestParseXY(t *testing.T) {
	x, y, err := parseXY([]string{"3", "4"})
	require.NoError(t, err)
	assert.Equal(t, 3, x)
	assert.Equal(t, 4, y)

	for _, args := range [][]string{nil, {"1"}, {"a", "1"}, {"1", "b"}, {"1", "2", "3"}} {
		_, _, err := parseXY(args)
		assert.Error(t, err, args)
	}
}

func TestExecutorCommands(t *testing.T) {
	e := stripExecutor(t)

	require.NoError(t, e.apply("r 0 0\nf 2 0\ng"))
	assert.Equal(t, []string{".1*  "}, Grid(e.game))
	assert.Empty(t, e.steps)

	require.NoError(t, e.apply("f 2 0\nr 3 0\nr 4 0"))
	assert.Equal(t, mines.Won, e.game.Status())
}

func TestExecutorStopsAtGameOver(t *testing.T) {
	e := stripExecutor(t)
	require.NoError(t, e.apply("r 4 0\nbogus"))
	assert.Equal(t, mines.Lost, e.game.Status())
}

func TestExecutorErrors(t *testing.T) {
	for _, tc := range []struct {
		name    string
		message string
	}{
		{"unknown", "c 0 0"},
		{"missing args", "r 0"},
		{"out of bounds", "f 9 9"},
		{"bad steps", "a 0"},
		{"too many steps", "a 1001"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := stripExecutor(t)
			assert.Error(t, e.apply(tc.message))
		})
	}

	e := stripExecutor(t)
	assert.ErrorIs(t, e.apply("x"), errUnknownCommand)
}

func TestExecutorAutoplayKeepsController(t *testing.T) {
	e := stripExecutor(t)

	require.NoError(t, e.apply("a"))
	require.Len(t, e.steps, 1)
	assert.Equal(t, "reveal", e.steps[0].Action)

	require.NoError(t, e.apply("a 50"))
	assert.LessOrEqual(t, len(e.steps), 50)
	assert.True(t, e.game.Over())
	assert.Len(t, e.bot.History(), 1+len(e.steps))
}

func TestConnectWS(t *testing.T) {
	f := newFixture(t, "")
	f.seedStrip(t)

	srv := httptest.NewServer(f.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/1/connect"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var reply WSReplyDTO
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("r 0 0")))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Empty(t, reply.Error)
	assert.Equal(t, []string{".1   "}, reply.Session.Grid)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("r 7 7")))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, mines.ErrOutOfBounds.Error(), reply.Error)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("r 3 0\nr 4 0")))
	reply = WSReplyDTO{}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "lost", reply.Session.Status)

	stored, err := f.store.FetchGameSession(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, "lost", stored.Status)
	assert.NotNil(t, stored.EndedAt)
}
