package app

import (
	"hash/maphash"
	"math/rand/v2"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vancomm/minesweeper-autoplay/internal/handlers"
	"github.com/vancomm/minesweeper-autoplay/internal/middleware"
)

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func (a *App) Router() *mux.Router {
	root := mux.NewRouter()
	router := root
	if a.basePath != "" {
		router = root.PathPrefix(a.basePath).Subrouter()
	}

	game := handlers.NewGameHandler(
		a.logger, a.store, a.tokens, a.ws, a.rnd,
		handlers.WithGameOptions(a.gameOpts...),
		handlers.WithAutoplayOptions(a.botOpts...),
	)
	levels := handlers.NewLevelHandler(a.logger, a.store, a.levelsDir)
	auth := middleware.SessionAuth(a.logger, a.tokens)

	router.Methods(http.MethodPost).Path("/game").HandlerFunc(game.NewGame)
	router.Methods(http.MethodGet).Path("/game/{id}").Handler(auth(http.HandlerFunc(game.Fetch)))

	session := router.PathPrefix("/game/{id}").Subrouter()
	session.Use(mux.MiddlewareFunc(auth))
	session.Methods(http.MethodPost).Path("/move").HandlerFunc(game.Move)
	session.Methods(http.MethodPost).Path("/autoplay").HandlerFunc(game.Autoplay)
	session.Methods(http.MethodGet).Path("/connect").HandlerFunc(game.ConnectWS)

	router.Methods(http.MethodPost).Path("/level").HandlerFunc(levels.Create)
	router.Methods(http.MethodGet).Path("/level/{name}").HandlerFunc(levels.Fetch)
	router.Methods(http.MethodGet).Path("/levels").HandlerFunc(levels.List)
	router.Methods(http.MethodGet).Path("/highscores").HandlerFunc(levels.Highscores)
	router.Methods(http.MethodGet).Path("/status").HandlerFunc(handlers.Status)

	return root
}
