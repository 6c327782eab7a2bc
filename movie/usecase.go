package movie

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const DefaultRatingRetries = 5

type Service interface {
	ListMovies(ctx context.Context, name string) ([]Movie, error)
	GetMovie(ctx context.Context, id int64) (Movie, error)
	CreateMovie(ctx context.Context, d Details) (Movie, error)
	UpdateMovie(ctx context.Context, id int64, d Details) (Movie, error)
	DeleteMovie(ctx context.Context, id int64) error
	RateMovie(ctx context.Context, id int64, rating float64) (Movie, error)
}

// Repository persists movies. Implementations return ErrMovieNotFound for
// unknown ids and ErrStaleRating when UpdateRating loses a race.
type Repository interface {
	AllMovies(ctx context.Context, name string) ([]Movie, error)
	GetByID(ctx context.Context, id int64) (Movie, error)
	CreateMovie(ctx context.Context, m Movie) (Movie, error)
	UpdateDetails(ctx context.Context, id int64, d Details) (Movie, error)
	DeleteMovie(ctx context.Context, id int64) error
	UpdateRating(ctx context.Context, id int64, prevCount int64, average float64, count int64) (Movie, error)
}

type Usecase struct {
	r Repository

	ratingRetries uint64
	retryInterval time.Duration
}

type Option func(uc *Usecase)

// WithRatingRetries bounds how many times a rating is re-applied after
// losing a concurrent update.
func WithRatingRetries(n int) Option {
	return func(uc *Usecase) {
		if n >= 0 {
			uc.ratingRetries = uint64(n)
		}
	}
}

func WithRetryInterval(d time.Duration) Option {
	return func(uc *Usecase) {
		uc.retryInterval = d
	}
}

func NewUsecase(r Repository, opts ...Option) *Usecase {
	uc := &Usecase{
		r:             r,
		ratingRetries: DefaultRatingRetries,
		retryInterval: 10 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *Usecase) ListMovies(ctx context.Context, name string) ([]Movie, error) {
	return uc.r.AllMovies(ctx, name)
}

func (uc *Usecase) GetMovie(ctx context.Context, id int64) (Movie, error) {
	if id <= 0 {
		return Movie{}, ErrMovieNotFound
	}
	return uc.r.GetByID(ctx, id)
}

func (uc *Usecase) CreateMovie(ctx context.Context, d Details) (Movie, error) {
	return uc.r.CreateMovie(ctx, New(d))
}

func (uc *Usecase) UpdateMovie(ctx context.Context, id int64, d Details) (Movie, error) {
	if id <= 0 {
		return Movie{}, ErrMovieNotFound
	}
	d.Actors = normalizeActors(d.Actors)
	return uc.r.UpdateDetails(ctx, id, d)
}

func (uc *Usecase) DeleteMovie(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrMovieNotFound
	}
	return uc.r.DeleteMovie(ctx, id)
}

// RateMovie folds rating into the movie's average. The write is conditional on
// the rating count read beforehand; a stale write is retried from a fresh read.
func (uc *Usecase) RateMovie(ctx context.Context, id int64, rating float64) (Movie, error) {
	if id <= 0 {
		return Movie{}, ErrMovieNotFound
	}

	var rated Movie
	op := func() error {
		m, err := uc.r.GetByID(ctx, id)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := ValidateRating(rating); err != nil {
			return backoff.Permanent(err)
		}

		average, count := ApplyRating(m.RatingAverage, m.RatingCount, rating)
		updated, err := uc.r.UpdateRating(ctx, id, m.RatingCount, average, count)
		if errors.Is(err, ErrStaleRating) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		rated = updated
		return nil
	}

	if err := backoff.Retry(op, uc.ratingBackOff(ctx)); err != nil {
		return Movie{}, err
	}
	return rated, nil
}

func (uc *Usecase) ratingBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = uc.retryInterval
	b.MaxInterval = 20 * uc.retryInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uc.ratingRetries), ctx)
}
