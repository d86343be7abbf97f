// Package seeds fills an empty database with a deterministic synthetic
// catalog and rating history so the service is usable out of the box.
package seeds

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	numUsers   = 20
	numMovies  = 50
	numRatings = 400
)

// Setup truncates and reseeds users, movies and ratings. The generator
// is seeded with a fixed value so every fresh database gets the same
// data and trained models are reproducible.
func Setup(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	rng := rand.New(rand.NewSource(42))

	logger.Info().Msg("seed: truncating existing data")
	if _, err := pool.Exec(ctx, `
		TRUNCATE ratings, movies, users RESTART IDENTITY CASCADE
	`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	logger.Info().Msg("seed: inserting users")
	if err := seedUsers(ctx, pool, rng, numUsers); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	logger.Info().Msg("seed: inserting movies")
	if err := seedMovies(ctx, pool, numMovies); err != nil {
		return fmt.Errorf("seed movies: %w", err)
	}

	logger.Info().Msg("seed: inserting ratings")
	if err := seedRatings(ctx, pool, rng, numRatings); err != nil {
		return fmt.Errorf("seed ratings: %w", err)
	}

	logger.Info().Msg("seed: complete")
	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) error {
	rows := []string{}
	args := []any{}

	for i := 0; i < n; i++ {
		name := fmt.Sprintf("user_%02d", i+1)
		createdAt := time.Now().AddDate(0, 0, -rng.Intn(365))

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d)", base+1, base+2))
		args = append(args, name, createdAt)
	}

	if len(rows) == 0 {
		return nil
	}

	query := "INSERT INTO users (name, created_at) VALUES " + strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

func seedMovies(ctx context.Context, pool *pgxpool.Pool, n int) error {
	type entry struct {
		title  string
		genres string
	}
	catalog := []entry{
		{"Die Hard", "Action|Thriller"},
		{"Mad Max: Fury Road", "Action|Sci-Fi"},
		{"John Wick", "Action|Thriller"},
		{"The Dark Knight", "Action|Drama"},
		{"Gladiator", "Action|Drama"},
		{"The Shawshank Redemption", "Drama"},
		{"Forrest Gump", "Drama|Romance"},
		{"The Godfather", "Drama"},
		{"Parasite", "Drama|Thriller"},
		{"Whiplash", "Drama"},
		{"Superbad", "Comedy"},
		{"The Hangover", "Comedy"},
		{"Mean Girls", "Comedy"},
		{"Hot Fuzz", "Comedy|Action"},
		{"Groundhog Day", "Comedy|Romance"},
		{"Se7en", "Thriller"},
		{"Gone Girl", "Thriller|Drama"},
		{"Zodiac", "Thriller"},
		{"Shutter Island", "Thriller|Horror"},
		{"The Silence of the Lambs", "Thriller|Horror"},
		{"Blade Runner 2049", "Sci-Fi|Drama"},
		{"Interstellar", "Sci-Fi|Drama"},
		{"The Matrix", "Sci-Fi|Action"},
		{"Arrival", "Sci-Fi|Drama"},
		{"Inception", "Sci-Fi|Thriller"},
		{"The Shining", "Horror|Thriller"},
		{"Hereditary", "Horror"},
		{"Get Out", "Horror|Thriller"},
		{"The Exorcist", "Horror"},
		{"Alien", "Horror|Sci-Fi"},
		{"Before Sunrise", "Romance|Drama"},
		{"La La Land", "Romance|Comedy"},
		{"Pride and Prejudice", "Romance|Drama"},
		{"Eternal Sunshine of the Spotless Mind", "Romance|Sci-Fi"},
		{"Casablanca", "Romance|Drama"},
	}

	rows := []string{}
	args := []any{}

	for i := 0; i < n; i++ {
		e := catalog[i%len(catalog)]
		title := e.title
		if i >= len(catalog) {
			title = fmt.Sprintf("%s %d", title, i/len(catalog)+1)
		}

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d)", base+1, base+2))
		args = append(args, title, e.genres)
	}

	if len(rows) == 0 {
		return nil
	}

	query := "INSERT INTO movies (title, genres) VALUES " + strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

func seedRatings(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) error {
	seen := make(map[[2]int64]bool)

	rows := []string{}
	args := []any{}

	for i := 0; i < n; i++ {
		userID := int64(math.Ceil(math.Pow(rng.Float64(), 1.5) * numUsers))
		userID = max(1, min(userID, numUsers))

		movieID := int64(math.Ceil(math.Pow(rng.Float64(), 1.3) * numMovies))
		movieID = max(1, min(movieID, numMovies))

		key := [2]int64{userID, movieID}
		if seen[key] {
			continue
		}
		seen[key] = true

		// Half-star scale, skewed toward favorable ratings like real
		// rating datasets.
		value := 0.5 * float64(rng.Intn(10)+1)
		if value < 3.0 && rng.Float64() < 0.4 {
			value += 1.5
		}
		ratedAt := time.Now().AddDate(0, 0, -rng.Intn(180))

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		args = append(args, userID, movieID, value, ratedAt)
	}

	if len(rows) == 0 {
		return nil
	}

	query := "INSERT INTO ratings (user_id, movie_id, rating, rated_at) VALUES " +
		strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}
