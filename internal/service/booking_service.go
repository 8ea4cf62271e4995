package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/movie-booking/internal/apperror"
	"github.com/iliyamo/movie-booking/internal/model"
	"github.com/iliyamo/movie-booking/internal/notify"
	"github.com/iliyamo/movie-booking/internal/validation"
)

const bookingNotFound = "booking not found"

// BookingService books and cancels tickets and reports on bookings.
type BookingService struct {
	bookings BookingStore
	users    UserStore
	movies   MovieStore
	theaters TheaterStore
	notifier notify.Sender
	log      *zap.Logger
}

func NewBookingService(bookings BookingStore, users UserStore, movies MovieStore, theaters TheaterStore,
	notifier notify.Sender, log *zap.Logger) *BookingService {
	return &BookingService{
		bookings: bookings,
		users:    users,
		movies:   movies,
		theaters: theaters,
		notifier: notifier,
		log:      log,
	}
}

type BookingInput struct {
	User            string  `json:"user" validate:"required,objectid"`
	Movie           string  `json:"movie" validate:"required,objectid"`
	Theater         string  `json:"theater" validate:"required,objectid"`
	ShowTime        string  `json:"showTime" validate:"required"`
	NumberOfTickets int     `json:"numberOfTickets" validate:"required,gt=0"`
	TotalAmount     float64 `json:"totalAmount" validate:"required,gt=0"`
}

// CreateBooking books tickets after checking that the user, movie and
// theater exist. Users may only book for themselves.
func (s *BookingService) CreateBooking(ctx context.Context, actor Actor, in BookingInput) (*model.BookingView, error) {
	in.ShowTime = strings.TrimSpace(in.ShowTime)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	uid, err := parseID("user", in.User)
	if err != nil {
		return nil, err
	}
	mid, err := parseID("movie", in.Movie)
	if err != nil {
		return nil, err
	}
	tid, err := parseID("theater", in.Theater)
	if err != nil {
		return nil, err
	}
	if !actor.canActFor(uid) {
		return nil, apperror.Forbidden("you can only book tickets for yourself")
	}

	var (
		user    *model.User
		movie   *model.Movie
		theater *model.Theater
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.users.FindByID(gctx, uid)
		if err != nil {
			return storeErr(err, "user not found")
		}
		user = u
		return nil
	})
	g.Go(func() error {
		m, err := s.movies.FindByID(gctx, mid)
		if err != nil {
			return storeErr(err, movieNotFound)
		}
		movie = m
		return nil
	})
	g.Go(func() error {
		t, err := s.theaters.FindByID(gctx, tid)
		if err != nil {
			return storeErr(err, theaterNotFound)
		}
		theater = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := &model.Booking{
		User:            uid,
		Movie:           mid,
		Theater:         tid,
		ShowTime:        in.ShowTime,
		NumberOfTickets: in.NumberOfTickets,
		TotalAmount:     in.TotalAmount,
		Status:          model.StatusBooked,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, apperror.Internal(err)
	}

	view := model.BookingView{
		ID:   b.ID,
		User: model.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email},
		Movie: model.MovieSummary{
			ID:        movie.ID,
			MovieName: movie.MovieName,
			Genre:     movie.Genre,
			Language:  movie.Language,
			Duration:  movie.Duration,
		},
		Theater: model.TheaterSummary{
			ID:          theater.ID,
			TheaterName: theater.TheaterName,
			Location:    theater.Location,
			Movies:      theater.Movies,
		},
		ShowTime:        b.ShowTime,
		NumberOfTickets: b.NumberOfTickets,
		TotalAmount:     b.TotalAmount,
		Status:          b.Status,
		CreatedAt:       b.CreatedAt,
	}
	view.ResolveScreen()
	s.log.Info("tickets booked",
		zap.String("booking_id", b.ID.Hex()),
		zap.String("user_id", uid.Hex()),
		zap.Int("tickets", b.NumberOfTickets))

	s.notifyBooking(ctx, notify.KindBookingConfirmed, view)
	return &view, nil
}

// CancelBooking removes a booking and returns its last state marked as
// cancelled. Users may only cancel their own bookings.
func (s *BookingService) CancelBooking(ctx context.Context, actor Actor, bookingID string) (*model.BookingView, error) {
	bid, err := parseID("bookingId", bookingID)
	if err != nil {
		return nil, err
	}
	view, err := s.bookings.FindView(ctx, bid)
	if err != nil {
		return nil, storeErr(err, bookingNotFound)
	}
	if !actor.canActFor(view.User.ID) {
		return nil, apperror.Forbidden("you can only cancel your own bookings")
	}
	if err := s.bookings.Delete(ctx, bid); err != nil {
		return nil, storeErr(err, bookingNotFound)
	}
	view.Status = model.StatusCancelled
	s.log.Info("booking cancelled", zap.String("booking_id", bid.Hex()), zap.String("user_id", view.User.ID.Hex()))

	s.notifyBooking(ctx, notify.KindBookingCancelled, *view)
	return view, nil
}

// ViewBookingHistory lists a user's bookings, newest first. An unknown user
// has an empty history.
func (s *BookingService) ViewBookingHistory(ctx context.Context, actor Actor, userID string) ([]model.BookingView, error) {
	uid, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}
	if !actor.canActFor(uid) {
		return nil, apperror.Forbidden("you can only view your own booking history")
	}
	views, err := s.bookings.ListViewsByUser(ctx, uid)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return views, nil
}

func (s *BookingService) ListAllBookings(ctx context.Context) ([]model.BookingView, error) {
	views, err := s.bookings.ListViews(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return views, nil
}

// BookingsGroupedByTheater totals bookings per theater, movie and show time.
func (s *BookingService) BookingsGroupedByTheater(ctx context.Context) ([]model.TheaterBookingSummary, error) {
	out, err := s.bookings.SummaryByTheater(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}

// MoviesWithTotalBookings totals bookings per movie, most tickets first.
func (s *BookingService) MoviesWithTotalBookings(ctx context.Context) ([]model.MovieBookingTotal, error) {
	out, err := s.bookings.TotalsByMovie(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}

func (s *BookingService) notifyBooking(ctx context.Context, kind notify.Kind, v model.BookingView) {
	if v.User.Email == "" {
		s.log.Debug("booking has no recipient", zap.String("booking_id", v.ID.Hex()))
		return
	}
	notifyBestEffort(ctx, s.notifier, s.log, notify.Message{
		Kind:    kind,
		To:      v.User.Email,
		Name:    v.User.Name,
		Booking: notify.BookingDetailsFromView(v),
	})
}
