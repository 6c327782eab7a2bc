package main

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"movierating/movie"
	"movierating/pkg/config"
	"movierating/sqldb"

	migrate "github.com/rubenv/sql-migrate"
)

// actorSeparator splits the actors column, e.g. "Keanu Reeves|Carrie-Anne Moss".
const actorSeparator = "|"

func main() {
	var (
		csvPath string
		csvURL  string
		limit   int
	)

	flag.StringVar(&csvPath, "csv", "", "Path to a movies CSV file")
	flag.StringVar(&csvURL, "url", "", "URL of a movies CSV file or a zip containing one")
	flag.IntVar(&limit, "limit", 0, "Limit number of rows to import (0 = all)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if csvPath == "" && csvURL == "" {
		slog.Error("one of -csv or -url is required")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}

	count, err := run(cfg, csvPath, csvURL, limit)
	if err != nil {
		slog.Error("import failed", "error", err, "rows", count)
		os.Exit(1)
	}

	slog.Info("import completed", "rows", count)
}

func run(cfg *config.Config, csvPath, csvURL string, limit int) (int, error) {
	db, err := sqldb.NewConnection(sqldb.OptionsFromConfig(cfg))
	if err != nil {
		return 0, fmt.Errorf("open db connection: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if _, err := sqldb.Migrate(db, cfg.DB.Driver, migrate.Up); err != nil {
		return 0, err
	}

	svc := movie.NewUsecase(sqldb.NewMovieRepository(db))
	return importFrom(context.Background(), svc, csvPath, csvURL, limit)
}

// importFrom reads csvPath, or downloads csvURL when no path is given. The
// download is removed before returning.
func importFrom(ctx context.Context, svc movie.Service, csvPath, csvURL string, limit int) (int, error) {
	if csvPath == "" {
		path, cleanup, err := fetchCSV(csvURL)
		if err != nil {
			return 0, fmt.Errorf("download dataset: %w", err)
		}
		defer cleanup()
		csvPath = path
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	return importMovies(ctx, svc, file, limit)
}

// fetchCSV downloads url into a temp dir. A zip archive is unpacked and its
// first .csv entry is returned.
func fetchCSV(url string) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "movieseed-")
	if err != nil {
		return "", func() {}, err
	}

	cleanup := func() {
		_ = os.RemoveAll(tmpDir)
	}

	dest := filepath.Join(tmpDir, "download")
	if err := downloadFile(url, dest); err != nil {
		cleanup()
		return "", func() {}, err
	}

	if !strings.HasSuffix(strings.ToLower(url), ".zip") {
		return dest, cleanup, nil
	}

	csvPath, err := extractCSV(dest, tmpDir)
	if err != nil {
		cleanup()
		return "", func() {}, err
	}
	return csvPath, cleanup, nil
}

func downloadFile(url, dest string) error {
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Get(url) // nolint: noctx
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

func extractCSV(zipPath, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	for _, file := range r.File {
		if !strings.HasSuffix(strings.ToLower(file.Name), ".csv") {
			continue
		}

		src, err := file.Open()
		if err != nil {
			return "", err
		}
		defer src.Close()

		destPath := filepath.Join(destDir, filepath.Base(file.Name))
		out, err := os.Create(destPath)
		if err != nil {
			return "", err
		}

		if _, err := io.Copy(out, src); err != nil {
			_ = out.Close()
			return "", err
		}
		if err := out.Close(); err != nil {
			return "", err
		}

		return destPath, nil
	}

	return "", errors.New("no csv file found in zip")
}

type columns struct {
	name, duration, director, actors int
}

// importMovies creates one movie per CSV row through svc. Rows that cannot be
// parsed are logged and skipped.
func importMovies(ctx context.Context, svc movie.Service, r io.Reader, limit int) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	cols, err := parseHeader(reader)
	if err != nil {
		return 0, err
	}

	count := 0
	line := 1
	for limit <= 0 || count < limit {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, err
		}
		line++

		details, ok := parseRecord(record, cols)
		if !ok {
			slog.Warn("skipping malformed row", "line", line)
			continue
		}

		if _, err := svc.CreateMovie(ctx, details); err != nil {
			return count, fmt.Errorf("line %d: %w", line, err)
		}
		count++
	}

	return count, nil
}

func parseHeader(reader *csv.Reader) (columns, error) {
	header, err := reader.Read()
	if err != nil {
		return columns{}, err
	}

	cols := columns{name: -1, duration: -1, director: -1, actors: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "name":
			cols.name = i
		case "duration":
			cols.duration = i
		case "director":
			cols.director = i
		case "actors":
			cols.actors = i
		}
	}
	if cols.name == -1 || cols.duration == -1 || cols.director == -1 {
		return columns{}, errors.New("missing required columns in csv header")
	}

	return cols, nil
}

func parseRecord(record []string, cols columns) (movie.Details, bool) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	if cols.name >= len(record) || cols.duration >= len(record) || cols.director >= len(record) {
		return movie.Details{}, false
	}

	duration, err := strconv.Atoi(field(cols.duration))
	if err != nil {
		return movie.Details{}, false
	}

	actors := []string{}
	for _, a := range strings.Split(field(cols.actors), actorSeparator) {
		if a = strings.TrimSpace(a); a != "" {
			actors = append(actors, a)
		}
	}

	return movie.Details{
		Name:     field(cols.name),
		Duration: duration,
		Actors:   actors,
		Director: field(cols.director),
	}, true
}
