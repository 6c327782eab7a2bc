package httpserver

import (
	"movierating/movie"
)

// MovieRequest is the body of create and full-replace update. Pointers make
// presence required without rejecting zero values such as duration 0.
type MovieRequest struct {
	Name     *string  `json:"name" validate:"required"`
	Duration *int     `json:"duration" validate:"required"`
	Actors   []string `json:"actors"`
	Director *string  `json:"director" validate:"required"`
}

func (r MovieRequest) ToDetails() movie.Details {
	actors := r.Actors
	if actors == nil {
		actors = []string{}
	}
	return movie.Details{
		Name:     *r.Name,
		Duration: *r.Duration,
		Actors:   actors,
		Director: *r.Director,
	}
}

// RatingRequest carries a single rating. The range is checked by the movie
// usecase after the movie is found.
type RatingRequest struct {
	Rating *float64 `json:"rating" validate:"required"`
}
