package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vancomm/minesweeper-autoplay/internal/level"
	"github.com/vancomm/minesweeper-autoplay/internal/repository"
)

type LevelHandler struct {
	logger    *slog.Logger
	store     Store
	levelsDir string
}

// NewLevelHandler serves stored levels. With a non-empty levelsDir every
// created level is also exported as a JSON file under it.
func NewLevelHandler(logger *slog.Logger, store Store, levelsDir string) *LevelHandler {
	return &LevelHandler{logger: logger, store: store, levelsDir: levelsDir}
}

func (h *LevelHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4096)
	spec, err := level.Decode(r.Body)
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if err := level.ValidateName(spec.Name); err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	spec = spec.Clamp()

	lvl, err := h.store.CreateLevel(r.Context(), spec)
	if errors.Is(err, repository.ErrLevelExists) {
		sendError(w, h.logger, http.StatusConflict,
			fmt.Errorf("level %q already exists", spec.Name))
		return
	}
	if err != nil {
		internalError(w, h.logger, "unable to create level", err)
		return
	}

	if h.levelsDir != "" {
		path, err := level.Export(h.levelsDir, spec)
		if err != nil {
			h.logger.Warn("unable to export level",
				slog.String("level", spec.Name), slog.Any("error", err))
		} else {
			h.logger.Debug("exported level", slog.String("path", path))
		}
	}

	sendStatusJSON(w, h.logger, http.StatusCreated, lvl)
}

func (h *LevelHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	lvl, err := h.store.FetchLevel(r.Context(), name)
	if errors.Is(err, repository.ErrNotFound) {
		sendError(w, h.logger, http.StatusNotFound, fmt.Errorf("level %q not found", name))
		return
	}
	if err != nil {
		internalError(w, h.logger, "unable to fetch level", err)
		return
	}
	sendJSONOrLog(w, h.logger, lvl)
}

func (h *LevelHandler) List(w http.ResponseWriter, r *http.Request) {
	levels, err := h.store.ListLevels(r.Context())
	if err != nil {
		internalError(w, h.logger, "unable to list levels", err)
		return
	}
	if levels == nil {
		levels = []repository.Level{}
	}
	sendJSONOrLog(w, h.logger, levels)
}

func (h *LevelHandler) Highscores(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseHighscoreFilter(r.URL.Query())
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	scores, err := h.store.GetHighscores(r.Context(), filter)
	if err != nil {
		internalError(w, h.logger, "unable to fetch highscores", err)
		return
	}
	if scores == nil {
		scores = []repository.Highscore{}
	}
	sendJSONOrLog(w, h.logger, scores)
}

func Status(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
