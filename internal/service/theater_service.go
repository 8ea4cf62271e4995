package service

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/apperror"
	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/validation"
)

const theaterNotFound = "theater not found"

// TheaterService manages theaters and the movies assigned to their screens.
type TheaterService struct {
	theaters TheaterStore
	movies   MovieStore
	log      *zap.Logger
}

func NewTheaterService(theaters TheaterStore, movies MovieStore, log *zap.Logger) *TheaterService {
	return &TheaterService{theaters: theaters, movies: movies, log: log}
}

type TheaterInput struct {
	TheaterName string `json:"theatername" validate:"required,min=2,max=100"`
	Location    string `json:"location" validate:"required,min=5,max=200"`
	Screens     int    `json:"screens" validate:"required,min=1,max=20"`
}

type TheaterUpdate struct {
	TheaterName *string `json:"theatername" validate:"omitempty,min=2,max=100"`
	Location    *string `json:"location" validate:"omitempty,min=5,max=200"`
	Screens     *int    `json:"screens" validate:"omitempty,min=1,max=20"`
}

type AssignMovieInput struct {
	TheaterID    string   `json:"theaterId" validate:"required,objectid"`
	MovieID      string   `json:"movieId" validate:"required,objectid"`
	ScreenNumber int      `json:"screenNumber" validate:"required,min=1"`
	ShowTimings  []string `json:"showTimings" validate:"required,min=1,dive,required"`
}

func (s *TheaterService) Create(ctx context.Context, in TheaterInput) (*model.TheaterView, error) {
	in.TheaterName = strings.TrimSpace(in.TheaterName)
	in.Location = strings.TrimSpace(in.Location)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	t := &model.Theater{TheaterName: in.TheaterName, Location: in.Location, Screens: in.Screens}
	if err := s.theaters.Create(ctx, t); err != nil {
		return nil, apperror.Internal(err)
	}
	s.log.Info("theater created", zap.String("theater_id", t.ID.Hex()), zap.Int("screens", t.Screens))
	return s.view(ctx, t)
}

func (s *TheaterService) List(ctx context.Context) ([]model.TheaterView, error) {
	theaters, err := s.theaters.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	var ids []primitive.ObjectID
	for _, t := range theaters {
		for _, a := range t.Movies {
			ids = append(ids, a.Movie)
		}
	}
	byID, err := s.moviesByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]model.TheaterView, 0, len(theaters))
	for i := range theaters {
		out = append(out, expand(&theaters[i], byID))
	}
	return out, nil
}

func (s *TheaterService) GetByID(ctx context.Context, id string) (*model.TheaterView, error) {
	tid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	t, err := s.theaters.FindByID(ctx, tid)
	if err != nil {
		return nil, storeErr(err, theaterNotFound)
	}
	return s.view(ctx, t)
}

// Update merges up into the theater. The screen count may not drop below a
// screen that already has a movie.
func (s *TheaterService) Update(ctx context.Context, id string, up TheaterUpdate) (*model.TheaterView, error) {
	tid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	blankToNil(&up.TheaterName, &up.Location)
	if err := validation.Struct(up); err != nil {
		return nil, err
	}

	t, err := s.theaters.FindByID(ctx, tid)
	if err != nil {
		return nil, storeErr(err, theaterNotFound)
	}
	if up.TheaterName != nil {
		t.TheaterName = *up.TheaterName
	}
	if up.Location != nil {
		t.Location = *up.Location
	}
	if up.Screens != nil {
		if highest := t.HighestScreen(); *up.Screens < highest {
			return nil, apperror.Validation(fmt.Sprintf("screens cannot be less than %d, screen %d has a movie assigned", highest, highest))
		}
		t.Screens = *up.Screens
	}

	if err := s.theaters.Update(ctx, t); err != nil {
		return nil, storeErr(err, theaterNotFound)
	}
	return s.view(ctx, t)
}

// Delete removes the theater and returns it. Bookings that reference it
// are kept.
func (s *TheaterService) Delete(ctx context.Context, id string) (*model.Theater, error) {
	tid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	t, err := s.theaters.Delete(ctx, tid)
	if err != nil {
		return nil, storeErr(err, theaterNotFound)
	}
	s.log.Info("theater deleted", zap.String("theater_id", tid.Hex()))
	return t, nil
}

// AssignMovie puts a movie on a free screen of a theater.
func (s *TheaterService) AssignMovie(ctx context.Context, in AssignMovieInput) (*model.TheaterView, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	tid, err := parseID("theaterId", in.TheaterID)
	if err != nil {
		return nil, err
	}
	mid, err := parseID("movieId", in.MovieID)
	if err != nil {
		return nil, err
	}
	if _, err := s.movies.FindByID(ctx, mid); err != nil {
		return nil, storeErr(err, movieNotFound)
	}

	t, err := s.theaters.AssignMovie(ctx, tid, model.ScreenAssignment{
		Movie:        mid,
		ScreenNumber: in.ScreenNumber,
		ShowTimings:  in.ShowTimings,
	})
	if err != nil {
		return nil, storeErr(err, theaterNotFound)
	}
	s.log.Info("movie assigned",
		zap.String("theater_id", tid.Hex()), zap.String("movie_id", mid.Hex()), zap.Int("screen", in.ScreenNumber))
	return s.view(ctx, t)
}

// MovieTheaterDetails lists every (theater, assigned movie) pair ordered by
// movie name.
func (s *TheaterService) MovieTheaterDetails(ctx context.Context) ([]model.MovieTheaterRow, error) {
	rows, err := s.theaters.MovieDetails(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return rows, nil
}

func (s *TheaterService) view(ctx context.Context, t *model.Theater) (*model.TheaterView, error) {
	ids := make([]primitive.ObjectID, 0, len(t.Movies))
	for _, a := range t.Movies {
		ids = append(ids, a.Movie)
	}
	byID, err := s.moviesByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	v := expand(t, byID)
	return &v, nil
}

func (s *TheaterService) moviesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.Movie, error) {
	movies, err := s.movies.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	byID := make(map[primitive.ObjectID]*model.Movie, len(movies))
	for i := range movies {
		byID[movies[i].ID] = &movies[i]
	}
	return byID, nil
}

// expand resolves movie references; deleted movies become nil.
func expand(t *model.Theater, byID map[primitive.ObjectID]*model.Movie) model.TheaterView {
	assignments := make([]model.ScreenAssignmentView, 0, len(t.Movies))
	for _, a := range t.Movies {
		assignments = append(assignments, model.ScreenAssignmentView{
			Movie:        byID[a.Movie],
			ScreenNumber: a.ScreenNumber,
			ShowTimings:  a.ShowTimings,
		})
	}
	return model.TheaterView{
		ID:          t.ID,
		TheaterName: t.TheaterName,
		Location:    t.Location,
		Screens:     t.Screens,
		Movies:      assignments,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
