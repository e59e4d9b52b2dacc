package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/capitolcinema/booking-backend/internal/apperr"
	"github.com/capitolcinema/booking-backend/internal/cache"
	"github.com/capitolcinema/booking-backend/internal/repository"
)

// CategoryStore serves the seat-category catalog.
type CategoryStore interface {
	List(ctx context.Context) ([]repository.SeatCategory, error)
}

// RoomStore serves the room catalog and layouts.
type RoomStore interface {
	List(ctx context.Context) ([]repository.RoomSummary, error)
	GetPlan(ctx context.Context, roomID uint64) (repository.RoomPlan, error)
	CreateWithSeats(ctx context.Context, name string, width, height uint32, seats []repository.PlanSeat) (uint64, error)
}

// MovieStore serves the movie list.
type MovieStore interface {
	ListActive(ctx context.Context) ([]repository.Movie, error)
}

// RoomPlanInput is an uploaded room layout: name, pixel dimensions and
// the complete seat list, committed as one atomic batch.
type RoomPlanInput struct {
	Name   string                `json:"name"`
	Width  uint32                `json:"width"`
	Height uint32                `json:"height"`
	Seats  []repository.PlanSeat `json:"seats"`
}

// ReferenceService serves the slowly changing reference data through
// one injected cache per dataset. Callers share the process-wide cache
// instances, so concurrent requests observe the same cached value and
// the same refresh.
type ReferenceService struct {
	Auth   *AuthService
	cats   CategoryStore
	rooms  RoomStore
	movies MovieStore

	catCache   *cache.Cache[[]repository.SeatCategory]
	roomCache  *cache.Cache[[]repository.RoomSummary]
	movieCache *cache.Cache[[]repository.Movie]
}

func NewReferenceService(
	auth *AuthService,
	cats CategoryStore, rooms RoomStore, movies MovieStore,
	catCache *cache.Cache[[]repository.SeatCategory],
	roomCache *cache.Cache[[]repository.RoomSummary],
	movieCache *cache.Cache[[]repository.Movie],
) *ReferenceService {
	return &ReferenceService{
		Auth: auth, cats: cats, rooms: rooms, movies: movies,
		catCache: catCache, roomCache: roomCache, movieCache: movieCache,
	}
}

// Categories returns the seat-category catalog, read through the
// category cache.
func (s *ReferenceService) Categories(ctx context.Context) ([]repository.SeatCategory, error) {
	return s.catCache.Get(func() ([]repository.SeatCategory, error) {
		return s.cats.List(ctx)
	})
}

// Rooms returns the room catalog, read through the room cache.
func (s *ReferenceService) Rooms(ctx context.Context) ([]repository.RoomSummary, error) {
	return s.roomCache.Get(func() ([]repository.RoomSummary, error) {
		return s.rooms.List(ctx)
	})
}

// Movies returns the active movie list, read through the movie cache.
func (s *ReferenceService) Movies(ctx context.Context) ([]repository.Movie, error) {
	return s.movieCache.Get(func() ([]repository.Movie, error) {
		return s.movies.ListActive(ctx)
	})
}

// RoomPlan returns one room's layout. Plans are fetched per room and
// not cached; only the room list is.
func (s *ReferenceService) RoomPlan(ctx context.Context, roomID uint64) (repository.RoomPlan, error) {
	plan, err := s.rooms.GetPlan(ctx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.RoomPlan{}, apperr.New(apperr.NotFound, "no room with this id")
		}
		return repository.RoomPlan{}, err
	}
	return plan, nil
}

// UploadRoomPlan stores a new room with its full seat list in one
// atomic batch. Admin-only.
func (s *ReferenceService) UploadRoomPlan(ctx context.Context, token string, in RoomPlanInput) (uint64, error) {
	if _, err := s.Auth.Authorize(ctx, token, AdminRoleLevel); err != nil {
		return 0, err
	}
	if in.Name == "" || in.Width == 0 || in.Height == 0 {
		return 0, apperr.New(apperr.BadRequest, "room name, width and height are required")
	}
	if len(in.Seats) == 0 {
		return 0, apperr.New(apperr.BadRequest, "a room plan needs at least one seat")
	}
	id, err := s.rooms.CreateWithSeats(ctx, in.Name, in.Width, in.Height, in.Seats)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNameExists):
			return 0, apperr.New(apperr.Conflict, "a room with this name already exists")
		case errors.Is(err, repository.ErrBadReference):
			return 0, apperr.New(apperr.NotFound, "unknown seat category in plan")
		}
		return 0, err
	}
	return id, nil
}
