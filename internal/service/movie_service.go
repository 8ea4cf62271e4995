package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/movie-booking/internal/apperror"
	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/validation"
)

const movieNotFound = "movie not found"

// MovieService manages the movie catalog.
type MovieService struct {
	movies MovieStore
	log    *zap.Logger
}

func NewMovieService(movies MovieStore, log *zap.Logger) *MovieService {
	return &MovieService{movies: movies, log: log}
}

type MovieInput struct {
	MovieName   string   `json:"moviename" validate:"required"`
	Genre       string   `json:"genre" validate:"required"`
	Language    string   `json:"language" validate:"required"`
	Duration    string   `json:"duration" validate:"required"`
	Cast        []string `json:"cast" validate:"required,min=1,dive,required"`
	Director    string   `json:"director" validate:"required"`
	ReleaseDate string   `json:"releaseDate" validate:"required"`
}

// MovieUpdate carries the optional movie fields; nil keeps the stored value.
type MovieUpdate struct {
	MovieName   *string  `json:"moviename"`
	Genre       *string  `json:"genre"`
	Language    *string  `json:"language"`
	Duration    *string  `json:"duration"`
	Cast        []string `json:"cast" validate:"omitempty,dive,required"`
	Director    *string  `json:"director"`
	ReleaseDate *string  `json:"releaseDate"`
}

func (s *MovieService) Create(ctx context.Context, in MovieInput) (*model.Movie, error) {
	for _, f := range []*string{&in.MovieName, &in.Genre, &in.Language, &in.Duration, &in.Director, &in.ReleaseDate} {
		*f = strings.TrimSpace(*f)
	}
	in.Cast = compact(in.Cast)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	released, err := model.ParseDate(in.ReleaseDate)
	if err != nil {
		return nil, apperror.Validation("releaseDate must be a date (YYYY-MM-DD)")
	}

	m := &model.Movie{
		MovieName:   in.MovieName,
		Genre:       in.Genre,
		Language:    in.Language,
		Duration:    in.Duration,
		Cast:        in.Cast,
		Director:    in.Director,
		ReleaseDate: released,
	}
	if err := s.movies.Create(ctx, m); err != nil {
		return nil, apperror.Internal(err)
	}
	s.log.Info("movie created", zap.String("movie_id", m.ID.Hex()), zap.String("moviename", m.MovieName))
	return m, nil
}

func (s *MovieService) List(ctx context.Context) ([]model.Movie, error) {
	movies, err := s.movies.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return movies, nil
}

func (s *MovieService) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	mid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	m, err := s.movies.FindByID(ctx, mid)
	if err != nil {
		return nil, storeErr(err, movieNotFound)
	}
	return m, nil
}

func (s *MovieService) Update(ctx context.Context, id string, up MovieUpdate) (*model.Movie, error) {
	mid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	up.Cast = compact(up.Cast)
	if err := validation.Struct(up); err != nil {
		return nil, err
	}
	var released *time.Time
	if v := trimmed(up.ReleaseDate); v != "" {
		d, err := model.ParseDate(v)
		if err != nil {
			return nil, apperror.Validation("releaseDate must be a date (YYYY-MM-DD)")
		}
		released = &d
	}

	m, err := s.movies.FindByID(ctx, mid)
	if err != nil {
		return nil, storeErr(err, movieNotFound)
	}
	for dst, src := range map[*string]*string{
		&m.MovieName: up.MovieName,
		&m.Genre:     up.Genre,
		&m.Language:  up.Language,
		&m.Duration:  up.Duration,
		&m.Director:  up.Director,
	} {
		if v := trimmed(src); v != "" {
			*dst = v
		}
	}
	if len(up.Cast) > 0 {
		m.Cast = up.Cast
	}
	if released != nil {
		m.ReleaseDate = *released
	}

	if err := s.movies.Update(ctx, m); err != nil {
		return nil, storeErr(err, movieNotFound)
	}
	return m, nil
}

// Delete removes a movie and returns it. Theater assignments and bookings
// that reference it are left as they are.
func (s *MovieService) Delete(ctx context.Context, id string) (*model.Movie, error) {
	mid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	m, err := s.movies.Delete(ctx, mid)
	if err != nil {
		return nil, storeErr(err, movieNotFound)
	}
	s.log.Info("movie deleted", zap.String("movie_id", mid.Hex()))
	return m, nil
}
