package handlers

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/vancomm/minesweeper-autoplay/internal/level"
	"github.com/vancomm/minesweeper-autoplay/internal/repository"
)

// Store is the part of *repository.Queries the handlers use.
type Store interface {
	CreateGameSession(ctx context.Context, params repository.CreateGameSessionParams) (*repository.GameSession, error)
	FetchGameSession(ctx context.Context, gameSessionId int64) (*repository.GameSession, error)
	UpdateGameSession(ctx context.Context, gameSessionId int64, params repository.UpdateGameSessionParams) (*repository.GameSession, error)

	CreateLevel(ctx context.Context, spec level.Spec) (*repository.Level, error)
	FetchLevel(ctx context.Context, name string) (*repository.Level, error)
	ListLevels(ctx context.Context) ([]repository.Level, error)

	GetHighscores(ctx context.Context, filter repository.HighscoreFilter) ([]repository.Highscore, error)
}

var _ Store = (*repository.Queries)(nil)

// LockedRand lets concurrent requests share one generator.
type LockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewLockedRand(rnd *rand.Rand) *LockedRand {
	return &LockedRand{rnd: rnd}
}

func (r *LockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}

// sessionLocks serialises read-modify-write cycles on one game session.
type sessionLocks struct {
	locks sync.Map
}

func (s *sessionLocks) lock(id int64) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
