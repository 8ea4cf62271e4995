// Package servicetest provides in-memory stores and a recording notifier
// for service and router tests. The stores follow the Mongo repositories:
// the same sentinel errors, newest-first booking views, orphaned bookings
// kept with empty display fields, and reports in the same order.
package servicetest

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/repository"
)

// DB is a shared in-memory database. The typed stores returned by its
// accessors all lock the same mutex.
type DB struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]model.User
	roles    map[primitive.ObjectID]model.Role
	movies   map[primitive.ObjectID]model.Movie
	theaters map[primitive.ObjectID]model.Theater
	bookings map[primitive.ObjectID]model.Booking
}

// NewDB returns an empty database with the default roles seeded.
func NewDB() *DB {
	db := &DB{
		users:    map[primitive.ObjectID]model.User{},
		roles:    map[primitive.ObjectID]model.Role{},
		movies:   map[primitive.ObjectID]model.Movie{},
		theaters: map[primitive.ObjectID]model.Theater{},
		bookings: map[primitive.ObjectID]model.Booking{},
	}
	for _, r := range model.DefaultRoles() {
		r.ID = primitive.NewObjectID()
		db.roles[r.ID] = r
	}
	return db
}

func (db *DB) Users() *Users       { return &Users{db} }
func (db *DB) Roles() *Roles       { return &Roles{db} }
func (db *DB) Movies() *Movies     { return &Movies{db} }
func (db *DB) Theaters() *Theaters { return &Theaters{db} }
func (db *DB) Bookings() *Bookings { return &Bookings{db} }

// BookingCount reports how many bookings are stored.
func (db *DB) BookingCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.bookings)
}

// TheaterSnapshot returns the stored theater without going through a store.
func (db *DB) TheaterSnapshot(id primitive.ObjectID) (model.Theater, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	t, ok := db.theaters[id]
	return cloneTheater(t), ok
}

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

func idLess(a, b primitive.ObjectID) bool { return bytes.Compare(a[:], b[:]) < 0 }

func sortedIDs[T any](m map[primitive.ObjectID]T) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return idLess(ids[i], ids[j]) })
	return ids
}

// Users implements service.UserStore.
type Users struct{ db *DB }

func (s *Users) Create(_ context.Context, u *model.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.db.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt, u.UpdatedAt = now(), now()
	s.db.users[u.ID] = *u
	return nil
}

func (s *Users) FindByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Users) List(context.Context) ([]model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]model.User, 0, len(s.db.users))
	for _, id := range sortedIDs(s.db.users) {
		out = append(out, s.db.users[id])
	}
	return out, nil
}

func (s *Users) UpdateProfile(_ context.Context, u *model.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stored, ok := s.db.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = now()
	stored.Name, stored.Phone, stored.ProfilePicture, stored.UpdatedAt = u.Name, u.Phone, u.ProfilePicture, u.UpdatedAt
	s.db.users[u.ID] = stored
	return nil
}

func (s *Users) MarkVerified(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsVerified = true
	u.VerificationToken = ""
	u.UpdatedAt = now()
	s.db.users[id] = u
	return nil
}

// Roles implements service.RoleStore.
type Roles struct{ db *DB }

func (s *Roles) FindByName(_ context.Context, name model.RoleName) (*model.Role, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, r := range s.db.roles {
		if r.Name == name {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Roles) FindByID(_ context.Context, id primitive.ObjectID) (*model.Role, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	r, ok := s.db.roles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

// Movies implements service.MovieStore.
type Movies struct{ db *DB }

func cloneMovie(m model.Movie) model.Movie {
	m.Cast = append([]string(nil), m.Cast...)
	return m
}

func (s *Movies) Create(_ context.Context, m *model.Movie) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m.ID = primitive.NewObjectID()
	m.CreatedAt, m.UpdatedAt = now(), now()
	s.db.movies[m.ID] = cloneMovie(*m)
	return nil
}

func (s *Movies) FindAll(context.Context) ([]model.Movie, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]model.Movie, 0, len(s.db.movies))
	for _, id := range sortedIDs(s.db.movies) {
		out = append(out, cloneMovie(s.db.movies[id]))
	}
	return out, nil
}

func (s *Movies) FindByID(_ context.Context, id primitive.ObjectID) (*model.Movie, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m, ok := s.db.movies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m = cloneMovie(m)
	return &m, nil
}

func (s *Movies) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]model.Movie, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]model.Movie, 0, len(ids))
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if m, ok := s.db.movies[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, cloneMovie(m))
		}
	}
	return out, nil
}

func (s *Movies) Update(_ context.Context, m *model.Movie) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stored, ok := s.db.movies[m.ID]
	if !ok {
		return repository.ErrNotFound
	}
	m.CreatedAt = stored.CreatedAt
	m.UpdatedAt = now()
	s.db.movies[m.ID] = cloneMovie(*m)
	return nil
}

func (s *Movies) Delete(_ context.Context, id primitive.ObjectID) (*model.Movie, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m, ok := s.db.movies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(s.db.movies, id)
	return &m, nil
}

// Theaters implements service.TheaterStore.
type Theaters struct{ db *DB }

func cloneTheater(t model.Theater) model.Theater {
	movies := make([]model.ScreenAssignment, 0, len(t.Movies))
	for _, a := range t.Movies {
		a.ShowTimings = append([]string(nil), a.ShowTimings...)
		movies = append(movies, a)
	}
	t.Movies = movies
	return t
}

func (s *Theaters) Create(_ context.Context, t *model.Theater) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t.ID = primitive.NewObjectID()
	t.CreatedAt, t.UpdatedAt = now(), now()
	if t.Movies == nil {
		t.Movies = []model.ScreenAssignment{}
	}
	s.db.theaters[t.ID] = cloneTheater(*t)
	return nil
}

func (s *Theaters) FindAll(context.Context) ([]model.Theater, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]model.Theater, 0, len(s.db.theaters))
	for _, id := range sortedIDs(s.db.theaters) {
		out = append(out, cloneTheater(s.db.theaters[id]))
	}
	return out, nil
}

func (s *Theaters) FindByID(_ context.Context, id primitive.ObjectID) (*model.Theater, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.theaters[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t = cloneTheater(t)
	return &t, nil
}

func (s *Theaters) Update(_ context.Context, t *model.Theater) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stored, ok := s.db.theaters[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.TheaterName, stored.Location, stored.Screens = t.TheaterName, t.Location, t.Screens
	stored.UpdatedAt = now()
	s.db.theaters[t.ID] = stored
	*t = cloneTheater(stored)
	return nil
}

func (s *Theaters) Delete(_ context.Context, id primitive.ObjectID) (*model.Theater, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.theaters[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(s.db.theaters, id)
	return &t, nil
}

// AssignMovie checks and appends under one lock, like the conditional
// update of the Mongo repository.
func (s *Theaters) AssignMovie(_ context.Context, theaterID primitive.ObjectID, a model.ScreenAssignment) (*model.Theater, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.theaters[theaterID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if a.ScreenNumber > t.Screens {
		return nil, repository.ErrScreenOutOfRange
	}
	if t.ScreenTaken(a.ScreenNumber) {
		return nil, repository.ErrScreenTaken
	}
	t = cloneTheater(t)
	a.ShowTimings = append([]string(nil), a.ShowTimings...)
	t.Movies = append(t.Movies, a)
	t.UpdatedAt = now()
	s.db.theaters[theaterID] = t
	out := cloneTheater(t)
	return &out, nil
}

// MovieDetails drops assignments whose movie is gone, as the inner
// $unwind of the pipeline does.
func (s *Theaters) MovieDetails(context.Context) ([]model.MovieTheaterRow, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rows := make([]model.MovieTheaterRow, 0)
	for _, t := range s.db.theaters {
		for _, a := range t.Movies {
			m, ok := s.db.movies[a.Movie]
			if !ok {
				continue
			}
			rows = append(rows, model.MovieTheaterRow{
				MovieName:    m.MovieName,
				Genre:        m.Genre,
				Language:     m.Language,
				Duration:     m.Duration,
				Cast:         append([]string(nil), m.Cast...),
				Director:     m.Director,
				TheaterName:  t.TheaterName,
				Location:     t.Location,
				Screens:      t.Screens,
				ScreenNumber: a.ScreenNumber,
				ShowTimings:  append([]string(nil), a.ShowTimings...),
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.MovieName != b.MovieName {
			return a.MovieName < b.MovieName
		}
		if a.TheaterName != b.TheaterName {
			return a.TheaterName < b.TheaterName
		}
		return a.ScreenNumber < b.ScreenNumber
	})
	return rows, nil
}

// Bookings implements service.BookingStore.
type Bookings struct{ db *DB }

func (s *Bookings) Create(_ context.Context, b *model.Booking) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b.ID = primitive.NewObjectID()
	b.CreatedAt, b.UpdatedAt = now(), now()
	s.db.bookings[b.ID] = *b
	return nil
}

func (s *Bookings) FindView(_ context.Context, id primitive.ObjectID) (*model.BookingView, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	v := s.view(b)
	return &v, nil
}

func (s *Bookings) Delete(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.bookings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.bookings, id)
	return nil
}

func (s *Bookings) ListViewsByUser(_ context.Context, userID primitive.ObjectID) ([]model.BookingView, error) {
	return s.views(func(b model.Booking) bool { return b.User == userID }), nil
}

func (s *Bookings) ListViews(context.Context) ([]model.BookingView, error) {
	return s.views(func(model.Booking) bool { return true }), nil
}

func (s *Bookings) SummaryByTheater(context.Context) ([]model.TheaterBookingSummary, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	type key struct {
		theater, movie primitive.ObjectID
		showTime       string
	}
	groups := map[key]*model.TheaterBookingSummary{}
	for _, b := range s.db.bookings {
		k := key{b.Theater, b.Movie, b.ShowTime}
		g, ok := groups[k]
		if !ok {
			g = &model.TheaterBookingSummary{
				TheaterID:   b.Theater,
				TheaterName: s.db.theaters[b.Theater].TheaterName,
				MovieID:     b.Movie,
				MovieName:   s.db.movies[b.Movie].MovieName,
				ShowTime:    b.ShowTime,
			}
			groups[k] = g
		}
		g.TotalTickets += b.NumberOfTickets
		g.TotalBookings++
		g.TotalAmount += b.TotalAmount
	}
	out := make([]model.TheaterBookingSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TheaterName != b.TheaterName {
			return a.TheaterName < b.TheaterName
		}
		if a.MovieName != b.MovieName {
			return a.MovieName < b.MovieName
		}
		return a.ShowTime < b.ShowTime
	})
	return out, nil
}

func (s *Bookings) TotalsByMovie(context.Context) ([]model.MovieBookingTotal, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]model.MovieBookingTotal, 0, len(s.db.movies))
	for _, id := range sortedIDs(s.db.movies) {
		t := model.MovieBookingTotal{MovieID: id, MovieName: s.db.movies[id].MovieName}
		for _, b := range s.db.bookings {
			if b.Movie == id {
				t.TotalTickets += b.NumberOfTickets
				t.TotalBookings++
				t.TotalAmount += b.TotalAmount
			}
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalTickets != out[j].TotalTickets {
			return out[i].TotalTickets > out[j].TotalTickets
		}
		return out[i].MovieName < out[j].MovieName
	})
	return out, nil
}

func (s *Bookings) views(keep func(model.Booking) bool) []model.BookingView {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	matched := make([]model.Booking, 0)
	for _, b := range s.db.bookings {
		if keep(b) {
			matched = append(matched, b)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return idLess(matched[j].ID, matched[i].ID)
	})
	out := make([]model.BookingView, 0, len(matched))
	for _, b := range matched {
		out = append(out, s.view(b))
	}
	return out
}

// view must be called with the lock held.
func (s *Bookings) view(b model.Booking) model.BookingView {
	u := s.db.users[b.User]
	m := s.db.movies[b.Movie]
	t := cloneTheater(s.db.theaters[b.Theater])
	v := model.BookingView{
		ID:   b.ID,
		User: model.UserSummary{ID: b.User, Name: u.Name, Email: u.Email},
		Movie: model.MovieSummary{
			ID:        b.Movie,
			MovieName: m.MovieName,
			Genre:     m.Genre,
			Language:  m.Language,
			Duration:  m.Duration,
		},
		Theater: model.TheaterSummary{
			ID:          b.Theater,
			TheaterName: t.TheaterName,
			Location:    t.Location,
			Movies:      t.Movies,
		},
		ShowTime:        b.ShowTime,
		NumberOfTickets: b.NumberOfTickets,
		TotalAmount:     b.TotalAmount,
		Status:          b.Status,
		CreatedAt:       b.CreatedAt,
	}
	v.ResolveScreen()
	return v
}
