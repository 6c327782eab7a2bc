package httpserver

import (
	"movierating/movie"

	"github.com/labstack/echo/v4"
)

const deletedMessage = "Movie deleted successfully"

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

func writeMovie(c echo.Context, status int, m movie.Movie) error {
	if m.Actors == nil {
		m.Actors = []string{}
	}
	return c.JSON(status, m)
}

func writeMovies(c echo.Context, status int, movies []movie.Movie) error {
	if movies == nil {
		movies = []movie.Movie{}
	}
	for i := range movies {
		if movies[i].Actors == nil {
			movies[i].Actors = []string{}
		}
	}
	return c.JSON(status, movies)
}
