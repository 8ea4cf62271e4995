package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/movie-booking/internal/apperror"
	"github.com/iliyamo/movie-booking/internal/service"
)

func TestMovieService_CreateGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	created, err := e.movies.Create(ctx, service.MovieInput{
		MovieName:   "Inception",
		Genre:       " Sci-Fi ",
		Language:    "English",
		Duration:    "148 min",
		Cast:        []string{"Leonardo DiCaprio ", "  ", "Elliot Page"},
		Director:    "Christopher Nolan",
		ReleaseDate: "2010-07-16T18:30:00Z",
	})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, time.Date(2010, 7, 16, 0, 0, 0, 0, time.UTC), created.ReleaseDate)
	assert.Equal(t, []string{"Leonardo DiCaprio", "Elliot Page"}, created.Cast)

	got, err := e.movies.GetByID(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, created.MovieName, got.MovieName)
	assert.Equal(t, "Sci-Fi", got.Genre)
	assert.Equal(t, created.Cast, got.Cast)
	assert.True(t, created.ReleaseDate.Equal(got.ReleaseDate))

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"releaseDate":"2010-07-16"`)
}

func TestMovieService_CreateValidation(t *testing.T) {
	base := service.MovieInput{
		MovieName:   "Inception",
		Genre:       "Sci-Fi",
		Language:    "English",
		Duration:    "148 min",
		Cast:        []string{"Leonardo DiCaprio"},
		Director:    "Christopher Nolan",
		ReleaseDate: "2010-07-16",
	}
	tests := []struct {
		name   string
		mutate func(in *service.MovieInput)
		msg    string
	}{
		{name: "name", mutate: func(in *service.MovieInput) { in.MovieName = " " }, msg: "moviename is required"},
		{name: "blank genre", mutate: func(in *service.MovieInput) { in.Genre = "   " }, msg: "genre is required"},
		{name: "blank language", mutate: func(in *service.MovieInput) { in.Language = "  " }, msg: "language is required"},
		{name: "blank duration", mutate: func(in *service.MovieInput) { in.Duration = " " }, msg: "duration is required"},
		{name: "blank cast member", mutate: func(in *service.MovieInput) { in.Cast = []string{"  "} }, msg: "cast must be at least 1 items"},
		{name: "empty cast", mutate: func(in *service.MovieInput) { in.Cast = []string{} }, msg: "cast must be at least 1 items"},
		{name: "missing cast", mutate: func(in *service.MovieInput) { in.Cast = nil }, msg: "cast is required"},
		{name: "bad date", mutate: func(in *service.MovieInput) { in.ReleaseDate = "16/07/2010" }, msg: "releaseDate must be a date (YYYY-MM-DD)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			in := base
			tt.mutate(&in)

			_, err := e.movies.Create(context.Background(), in)

			require.Error(t, err)
			assert.True(t, apperror.Is(err, apperror.KindValidation))
			assert.Equal(t, tt.msg, err.Error())
			all, _ := e.movies.List(context.Background())
			assert.Empty(t, all)
		})
	}
}

func TestMovieService_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	m := e.movie(t, "Inception")

	updated, err := e.movies.Update(ctx, m.ID.Hex(), service.MovieUpdate{
		Genre:       strPtr("Thriller"),
		Director:    strPtr(""),
		ReleaseDate: strPtr("2010-07-20"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Thriller", updated.Genre)
	assert.Equal(t, "Christopher Nolan", updated.Director)
	assert.Equal(t, "Inception", updated.MovieName)
	assert.Equal(t, time.Date(2010, 7, 20, 0, 0, 0, 0, time.UTC), updated.ReleaseDate)

	updated, err = e.movies.Update(ctx, m.ID.Hex(), service.MovieUpdate{Cast: []string{"  "}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Leonardo DiCaprio"}, updated.Cast)

	updated, err = e.movies.Update(ctx, m.ID.Hex(), service.MovieUpdate{Cast: []string{" Tom Hardy ", "", "Elliot Page"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Tom Hardy", "Elliot Page"}, updated.Cast)

	_, err = e.movies.Update(ctx, m.ID.Hex(), service.MovieUpdate{ReleaseDate: strPtr("soon")})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = e.movies.Update(ctx, primitive.NewObjectID().Hex(), service.MovieUpdate{Genre: strPtr("Drama")})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	deleted, err := e.movies.Delete(ctx, m.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, m.ID, deleted.ID)

	_, err = e.movies.Delete(ctx, m.ID.Hex())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	_, err = e.movies.GetByID(ctx, m.ID.Hex())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	_, err = e.movies.GetByID(ctx, "12345")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestTheaterService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	tests := []struct {
		in  service.TheaterInput
		msg string
	}{
		{service.TheaterInput{TheaterName: "P", Location: "MG Road", Screens: 3}, "theatername must be at least 2 characters"},
		{service.TheaterInput{TheaterName: "PVR", Location: "MG", Screens: 3}, "location must be at least 5 characters"},
		{service.TheaterInput{TheaterName: "PVR", Location: "MG Road", Screens: 21}, "screens must be at most 20"},
		{service.TheaterInput{TheaterName: "PVR", Location: "MG Road"}, "screens is required"},
	}
	for _, tt := range tests {
		_, err := e.theaters.Create(ctx, tt.in)
		require.Error(t, err)
		assert.Equal(t, tt.msg, err.Error())
	}
	all, err := e.theaters.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTheaterService_AssignMovie(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	inception := e.movie(t, "Inception")
	interstellar := e.movie(t, "Interstellar")
	th := e.theater(t, "PVR Downtown", 3)

	view, err := e.theaters.AssignMovie(ctx, service.AssignMovieInput{
		TheaterID:    th.ID.Hex(),
		MovieID:      inception.ID.Hex(),
		ScreenNumber: 1,
		ShowTimings:  []string{"10:00 AM"},
	})
	require.NoError(t, err)
	require.Len(t, view.Movies, 1)
	require.NotNil(t, view.Movies[0].Movie)
	assert.Equal(t, "Inception", view.Movies[0].Movie.MovieName)

	tests := []struct {
		name string
		in   service.AssignMovieInput
		kind apperror.Kind
	}{
		{
			name: "screen already taken",
			in:   service.AssignMovieInput{TheaterID: th.ID.Hex(), MovieID: interstellar.ID.Hex(), ScreenNumber: 1, ShowTimings: []string{"09:00 PM"}},
			kind: apperror.KindConflict,
		},
		{
			name: "screen above theater screens",
			in:   service.AssignMovieInput{TheaterID: th.ID.Hex(), MovieID: interstellar.ID.Hex(), ScreenNumber: 4, ShowTimings: []string{"09:00 PM"}},
			kind: apperror.KindValidation,
		},
		{
			name: "missing theater",
			in:   service.AssignMovieInput{TheaterID: primitive.NewObjectID().Hex(), MovieID: interstellar.ID.Hex(), ScreenNumber: 2, ShowTimings: []string{"09:00 PM"}},
			kind: apperror.KindNotFound,
		},
		{
			name: "missing movie",
			in:   service.AssignMovieInput{TheaterID: th.ID.Hex(), MovieID: primitive.NewObjectID().Hex(), ScreenNumber: 2, ShowTimings: []string{"09:00 PM"}},
			kind: apperror.KindNotFound,
		},
		{
			name: "no show timings",
			in:   service.AssignMovieInput{TheaterID: th.ID.Hex(), MovieID: interstellar.ID.Hex(), ScreenNumber: 2},
			kind: apperror.KindValidation,
		},
		{
			name: "screen zero",
			in:   service.AssignMovieInput{TheaterID: th.ID.Hex(), MovieID: interstellar.ID.Hex(), ShowTimings: []string{"09:00 PM"}},
			kind: apperror.KindValidation,
		},
		{
			name: "malformed theater id",
			in:   service.AssignMovieInput{TheaterID: "abc", MovieID: interstellar.ID.Hex(), ScreenNumber: 2, ShowTimings: []string{"09:00 PM"}},
			kind: apperror.KindValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.theaters.AssignMovie(ctx, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))

			stored, ok := e.db.TheaterSnapshot(th.ID)
			require.True(t, ok)
			assert.Len(t, stored.Movies, 1, "failed assignment must not write")
		})
	}
}

func TestTheaterService_ScreenNumbersStayUnique(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	m := e.movie(t, "Inception")
	th := e.theater(t, "PVR Downtown", 2)

	const attempts = 8
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			_, err := e.theaters.AssignMovie(ctx, service.AssignMovieInput{
				TheaterID:    th.ID.Hex(),
				MovieID:      m.ID.Hex(),
				ScreenNumber: 2,
				ShowTimings:  []string{"10:00 AM"},
			})
			errs <- err
		}()
	}
	succeeded := 0
	for i := 0; i < attempts; i++ {
		if err := <-errs; err == nil {
			succeeded++
		} else {
			assert.True(t, apperror.Is(err, apperror.KindConflict))
		}
	}
	assert.Equal(t, 1, succeeded)

	stored, _ := e.db.TheaterSnapshot(th.ID)
	assert.Len(t, stored.Movies, 1)
}

func TestTheaterService_UpdateAndExpand(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	m := e.movie(t, "Inception")
	th := e.theater(t, "PVR Downtown", 5)
	e.assign(t, th.ID, m.ID, 4)

	_, err := e.theaters.Update(ctx, th.ID.Hex(), service.TheaterUpdate{Screens: intPtr(3)})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	v, err := e.theaters.Update(ctx, th.ID.Hex(), service.TheaterUpdate{TheaterName: strPtr("PVR Central"), Screens: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, "PVR Central", v.TheaterName)
	assert.Equal(t, "MG Road, Bengaluru", v.Location)
	assert.Equal(t, 4, v.Screens)
	require.Len(t, v.Movies, 1)
	assert.NotNil(t, v.Movies[0].Movie)

	_, err = e.theaters.Update(ctx, primitive.NewObjectID().Hex(), service.TheaterUpdate{Location: strPtr("Brigade Road")})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	// deleting the movie leaves the assignment with a null movie
	_, err = e.movies.Delete(ctx, m.ID.Hex())
	require.NoError(t, err)
	got, err := e.theaters.GetByID(ctx, th.ID.Hex())
	require.NoError(t, err)
	require.Len(t, got.Movies, 1)
	assert.Nil(t, got.Movies[0].Movie)
	assert.Equal(t, 4, got.Movies[0].ScreenNumber)

	all, err := e.theaters.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	deleted, err := e.theaters.Delete(ctx, th.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, th.ID, deleted.ID)
	_, err = e.theaters.GetByID(ctx, th.ID.Hex())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestTheaterService_MovieTheaterDetails(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	zulu := e.movie(t, "Zulu")
	alpha := e.movie(t, "Alpha")
	th := e.theater(t, "PVR Downtown", 3)
	e.assign(t, th.ID, zulu.ID, 1)
	e.assign(t, th.ID, alpha.ID, 2)

	rows, err := e.theaters.MovieTheaterDetails(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alpha", rows[0].MovieName)
	assert.Equal(t, 2, rows[0].ScreenNumber)
	assert.Equal(t, "PVR Downtown", rows[0].TheaterName)
	assert.Equal(t, "Zulu", rows[1].MovieName)
}

func intPtr(n int) *int { return &n }
