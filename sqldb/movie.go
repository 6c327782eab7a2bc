package sqldb

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"movierating/movie"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

// StringList stores a list of strings as a JSON array in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("decode string list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

func (StringList) GormDataType() string {
	return "text"
}

// MovieModel represents the database model for movies
type MovieModel struct {
	ID            int64      `gorm:"primaryKey;autoIncrement"`
	Name          string     `gorm:"not null"`
	Duration      int        `gorm:"not null"`
	Actors        StringList `gorm:"not null"`
	Director      string     `gorm:"not null"`
	RatingAverage float64    `gorm:"not null"`
	RatingCount   int64      `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (MovieModel) TableName() string {
	return "movies"
}

func (m MovieModel) toMovie() movie.Movie {
	actors := []string(m.Actors)
	if actors == nil {
		actors = []string{}
	}
	return movie.Movie{
		ID:            m.ID,
		Name:          m.Name,
		Duration:      m.Duration,
		Actors:        actors,
		Director:      m.Director,
		RatingAverage: m.RatingAverage,
		RatingCount:   m.RatingCount,
	}
}

// MovieRepository implements movie.Repository on top of gorm. Every call runs
// in its own session bound to the caller's context; read-modify-write calls
// run in a transaction that is rolled back on any error.
type MovieRepository struct {
	db *gorm.DB
}

// NewMovieRepository creates a new movie repository
func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// AllMovies lists movies in insertion order. A non-empty name keeps only
// movies whose name contains it, ignoring case.
func (r *MovieRepository) AllMovies(ctx context.Context, name string) ([]movie.Movie, error) {
	q := r.db.WithContext(ctx).Order("id")
	if name != "" {
		// both sides fold through the database's LOWER so they always agree
		pattern := "%" + escapeLike(name) + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) ESCAPE '!'", pattern)
	}

	var models []MovieModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}

	movies := make([]movie.Movie, len(models))
	for i, model := range models {
		movies[i] = model.toMovie()
	}
	return movies, nil
}

func (r *MovieRepository) GetByID(ctx context.Context, id int64) (movie.Movie, error) {
	var model MovieModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		return movie.Movie{}, notFoundOr(err, "get movie")
	}
	return model.toMovie(), nil
}

func (r *MovieRepository) CreateMovie(ctx context.Context, m movie.Movie) (movie.Movie, error) {
	model := MovieModel{
		Name:          m.Name,
		Duration:      m.Duration,
		Actors:        StringList(m.Actors),
		Director:      m.Director,
		RatingAverage: m.RatingAverage,
		RatingCount:   m.RatingCount,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return movie.Movie{}, fmt.Errorf("create movie: %w", err)
	}
	return model.toMovie(), nil
}

// UpdateDetails writes only the identity columns so a concurrent rating
// update is never overwritten.
func (r *MovieRepository) UpdateDetails(ctx context.Context, id int64, d movie.Details) (movie.Movie, error) {
	var model MovieModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, id).Error; err != nil {
			return err
		}

		model.Name = d.Name
		model.Duration = d.Duration
		model.Actors = StringList(d.Actors)
		model.Director = d.Director

		return tx.Model(&MovieModel{ID: id}).
			Select("name", "duration", "actors", "director").
			Updates(MovieModel{
				Name:     model.Name,
				Duration: model.Duration,
				Actors:   model.Actors,
				Director: model.Director,
			}).Error
	})
	if err != nil {
		return movie.Movie{}, notFoundOr(err, "update movie")
	}
	return model.toMovie(), nil
}

func (r *MovieRepository) DeleteMovie(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&MovieModel{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete movie: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return movie.ErrMovieNotFound
	}
	return nil
}

// UpdateRating stores a new rating aggregate only if rating_count still
// equals prevCount, and returns movie.ErrStaleRating otherwise.
func (r *MovieRepository) UpdateRating(ctx context.Context, id int64, prevCount int64, average float64, count int64) (movie.Movie, error) {
	var model MovieModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&MovieModel{}).
			Where("id = ? AND rating_count = ?", id, prevCount).
			Updates(map[string]interface{}{
				"rating_average": average,
				"rating_count":   count,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return movie.ErrStaleRating
		}
		return tx.First(&model, id).Error
	})
	if errors.Is(err, movie.ErrStaleRating) {
		return movie.Movie{}, movie.ErrStaleRating
	}
	if err != nil {
		return movie.Movie{}, notFoundOr(err, "update movie rating")
	}
	return model.toMovie(), nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return movie.ErrMovieNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
