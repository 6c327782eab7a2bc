package movie

import (
	"math"

	"movierating/errs"
)

const (
	MinRating = 0.0
	MaxRating = 10.0
)

var (
	ErrMovieNotFound = errs.Errorf(errs.ENOTFOUND, "Movie not found")
	ErrInvalidRating = errs.Errorf(errs.EINVALID, "Rating must be between 0 and 10")
	ErrInvalidID     = errs.Errorf(errs.EINVALID, "invalid movie id")
	ErrStaleRating   = errs.Errorf(errs.ECONFLICT, "movie rating changed concurrently, try again")
)

// Movie is a catalog entry. RatingAverage and RatingCount are derived from
// submitted ratings and only change through RateMovie.
type Movie struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Duration      int      `json:"duration"`
	Actors        []string `json:"actors"`
	Director      string   `json:"director"`
	RatingAverage float64  `json:"rating_average"`
	RatingCount   int64    `json:"rating_count"`
}

// Details holds the identity fields of a movie. It is the payload for both
// create and full-replace update; ratings are never part of it.
type Details struct {
	Name     string
	Duration int
	Actors   []string
	Director string
}

// New builds an unsaved movie with an empty rating aggregate.
func New(d Details) Movie {
	return Movie{
		Name:     d.Name,
		Duration: d.Duration,
		Actors:   normalizeActors(d.Actors),
		Director: d.Director,
	}
}

// ApplyDetails replaces the identity fields and keeps the rating aggregate.
func (m Movie) ApplyDetails(d Details) Movie {
	m.Name = d.Name
	m.Duration = d.Duration
	m.Actors = normalizeActors(d.Actors)
	m.Director = d.Director
	return m
}

// ValidateRating reports whether r lies in [MinRating, MaxRating].
func ValidateRating(r float64) error {
	if math.IsNaN(r) || r < MinRating || r > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

// ApplyRating folds one rating into a running mean:
//
//	total = average * count
//	count = count + 1
//	total = total + rating
//	average = RoundRating(total / count)
func ApplyRating(average float64, count int64, rating float64) (float64, int64) {
	total := average * float64(count)
	count++
	total += rating
	return RoundRating(total / float64(count)), count
}

// RoundRating rounds to two decimal places, halves away from zero.
func RoundRating(v float64) float64 {
	return math.Round(v*100) / 100
}

func normalizeActors(actors []string) []string {
	if actors == nil {
		return []string{}
	}
	out := make([]string, len(actors))
	copy(out, actors)
	return out
}
