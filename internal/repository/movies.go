package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cinematch/cinematch/internal/domain"
)

// GetAllMovies loads the whole catalog in id order.
func (r *Repository) GetAllMovies(ctx context.Context) ([]domain.Movie, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, genres FROM movies ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	return scanMovies(rows)
}

// GetMovieByID fetches a single movie.
func (r *Repository) GetMovieByID(ctx context.Context, movieID int64) (*domain.Movie, error) {
	var (
		mv     domain.Movie
		genres string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, genres FROM movies WHERE id = $1`, movieID,
	).Scan(&mv.ID, &mv.Title, &genres)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMovieNotFound
		}
		return nil, fmt.Errorf("query movie id=%d: %w", movieID, err)
	}
	mv.Genres = domain.ParseGenres(genres)
	return &mv, nil
}

// ListMovies returns up to limit movies, optionally filtered by genre
// substring and title search, both case-insensitive.
func (r *Repository) ListMovies(ctx context.Context, genre, search string, limit int) ([]domain.Movie, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, genres FROM movies
		 WHERE ($1 = '' OR genres ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR title ILIKE '%' || $2 || '%')
		 ORDER BY id
		 LIMIT $3`,
		genre, search, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	return scanMovies(rows)
}

func scanMovies(rows pgx.Rows) ([]domain.Movie, error) {
	var movies []domain.Movie
	for rows.Next() {
		var (
			mv     domain.Movie
			genres string
		)
		if err := rows.Scan(&mv.ID, &mv.Title, &genres); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		mv.Genres = domain.ParseGenres(genres)
		movies = append(movies, mv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return movies, nil
}
