package httpserver

import (
	"net/http"
	"strconv"

	"movierating/errs"
	"movierating/movie"

	"github.com/labstack/echo/v4"
)

func (s *Server) RegisterMovieRoutes(g *echo.Group) {
	g.GET("", s.handleListMovies)
	g.GET("/", s.handleListMovies)
	g.POST("", s.handleCreateMovie)
	g.POST("/", s.handleCreateMovie)
	g.GET("/:id", s.handleGetMovie)
	g.PUT("/:id", s.handleUpdateMovie)
	g.DELETE("/:id", s.handleDeleteMovie)
	g.PATCH("/:id/rating", s.handleRateMovie)
}

// handleListMovies godoc
// @Summary List Movies
// @Description List movies, optionally filtered by a case-insensitive name substring
// @Tags movies
// @Produce json
// @Param name query string false "Name substring"
// @Success 200 {array} movie.Movie
// @Router /movies/ [get]
func (s *Server) handleListMovies(c echo.Context) error {
	if err := s.requireMovieService(); err != nil {
		return err
	}

	movies, err := s.MovieService.ListMovies(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return err
	}
	return writeMovies(c, http.StatusOK, movies)
}

// handleGetMovie godoc
// @Summary Get Movie
// @Tags movies
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} movie.Movie
// @Failure 404 {object} ErrorResponse
// @Router /movies/{id} [get]
func (s *Server) handleGetMovie(c echo.Context) error {
	if err := s.requireMovieService(); err != nil {
		return err
	}

	id, err := movieID(c)
	if err != nil {
		return err
	}

	m, err := s.MovieService.GetMovie(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return writeMovie(c, http.StatusOK, m)
}

// handleCreateMovie godoc
// @Summary Create Movie
// @Description Create a movie; id and rating fields are assigned by the server
// @Tags movies
// @Accept json
// @Produce json
// @Param movie body MovieRequest true "Movie"
// @Success 200 {object} movie.Movie
// @Failure 400 {object} ErrorResponse
// @Router /movies/ [post]
func (s *Server) handleCreateMovie(c echo.Context) error {
	if err := s.requireMovieService(); err != nil {
		return err
	}

	req, err := bindMovieRequest(c)
	if err != nil {
		return err
	}

	m, err := s.MovieService.CreateMovie(c.Request().Context(), req.ToDetails())
	if err != nil {
		return err
	}
	return writeMovie(c, http.StatusOK, m)
}

// handleUpdateMovie godoc
// @Summary Update Movie
// @Description Replace name, duration, actors and director; ratings are kept
// @Tags movies
// @Accept json
// @Produce json
// @Param id path int true "Movie ID"
// @Param movie body MovieRequest true "Movie"
// @Success 200 {object} movie.Movie
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /movies/{id} [put]
func (s *Server) handleUpdateMovie(c echo.Context) error {
	if err := s.requireMovieService(); err != nil {
		return err
	}

	id, err := movieID(c)
	if err != nil {
		return err
	}
	req, err := bindMovieRequest(c)
	if err != nil {
		return err
	}

	m, err := s.MovieService.UpdateMovie(c.Request().Context(), id, req.ToDetails())
	if err != nil {
		return err
	}
	return writeMovie(c, http.StatusOK, m)
}

// handleDeleteMovie godoc
// @Summary Delete Movie
// @Tags movies
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /movies/{id} [delete]
func (s *Server) handleDeleteMovie(c echo.Context) error {
	if err := s.requireMovieService(); err != nil {
		return err
	}

	id, err := movieID(c)
	if err != nil {
		return err
	}

	if err := s.MovieService.DeleteMovie(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: deletedMessage})
}

// handleRateMovie godoc
// @Summary Rate Movie
// @Description Submit a rating between 0 and 10; updates the running average
// @Tags movies
// @Accept json
// @Produce json
// @Param id path int true "Movie ID"
// @Param rating body RatingRequest true "Rating"
// @Success 200 {object} movie.Movie
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /movies/{id}/rating [patch]
func (s *Server) handleRateMovie(c echo.Context) error {
	if err := s.requireMovieService(); err != nil {
		return err
	}

	id, err := movieID(c)
	if err != nil {
		return err
	}

	var req RatingRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	m, err := s.MovieService.RateMovie(c.Request().Context(), id, *req.Rating)
	if err != nil {
		return err
	}
	return writeMovie(c, http.StatusOK, m)
}

func (s *Server) requireMovieService() error {
	if s.MovieService == nil {
		return errs.Errorf(errs.ENOTIMPLEMENTED, "movie service not configured")
	}
	return nil
}

func bindMovieRequest(c echo.Context) (MovieRequest, error) {
	var req MovieRequest
	if err := c.Bind(&req); err != nil {
		return MovieRequest{}, err
	}
	if err := c.Validate(&req); err != nil {
		return MovieRequest{}, err
	}
	return req, nil
}

func movieID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, movie.ErrInvalidID
	}
	return id, nil
}
