package repository

import (
	"context"
	"fmt"

	"github.com/cinematch/cinematch/internal/domain"
)

// GetAllRatings loads every rating ordered by (user_id, movie_id) so the
// training input is deterministic run to run.
func (r *Repository) GetAllRatings(ctx context.Context) ([]domain.Rating, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, movie_id, rating, rated_at
		 FROM ratings
		 ORDER BY user_id, movie_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		var rt domain.Rating
		if err := rows.Scan(&rt.UserID, &rt.MovieID, &rt.Value, &rt.RatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}

// GetUserRatings loads one user's ratings, newest first.
func (r *Repository) GetUserRatings(ctx context.Context, userID int64) ([]domain.Rating, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, movie_id, rating, rated_at
		 FROM ratings
		 WHERE user_id = $1
		 ORDER BY rated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query ratings for user %d: %w", userID, err)
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		var rt domain.Rating
		if err := rows.Scan(&rt.UserID, &rt.MovieID, &rt.Value, &rt.RatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ratings: %w", err)
	}
	return ratings, nil
}

// AddRating inserts or updates a rating. Re-rating a movie overwrites the
// previous value.
func (r *Repository) AddRating(ctx context.Context, rt domain.Rating) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO ratings (user_id, movie_id, rating, rated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_id, movie_id)
		 DO UPDATE SET rating = EXCLUDED.rating, rated_at = EXCLUDED.rated_at`,
		rt.UserID, rt.MovieID, rt.Value,
	)
	if err != nil {
		return fmt.Errorf("insert rating user=%d movie=%d: %w", rt.UserID, rt.MovieID, err)
	}
	return nil
}

// MovieRatingStats aggregates a movie's rating count, mean and
// per-star-value distribution.
func (r *Repository) MovieRatingStats(ctx context.Context, movieID int64) (avg float64, count int, dist map[string]int, err error) {
	rows, err := r.pool.Query(ctx,
		`SELECT rating, COUNT(*) FROM ratings WHERE movie_id = $1 GROUP BY rating`,
		movieID,
	)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("query rating stats for movie %d: %w", movieID, err)
	}
	defer rows.Close()

	dist = make(map[string]int)
	var sum float64
	for rows.Next() {
		var value float64
		var n int
		if err := rows.Scan(&value, &n); err != nil {
			return 0, 0, nil, fmt.Errorf("scan rating stats: %w", err)
		}
		dist[fmt.Sprintf("%.1f", value)] = n
		sum += value * float64(n)
		count += n
	}
	if err := rows.Err(); err != nil {
		return 0, 0, nil, fmt.Errorf("iterate rating stats: %w", err)
	}
	if count > 0 {
		avg = sum / float64(count)
	}
	return avg, count, dist, nil
}

// GetUserIDsPaginated returns one page of user ids in id order.
func (r *Repository) GetUserIDsPaginated(ctx context.Context, page, limit int) ([]int64, error) {
	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT user_id FROM ratings ORDER BY user_id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query user ids for page %d: %w", page, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return ids, nil
}

// CountUsers counts distinct raters.
func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(DISTINCT user_id) FROM ratings`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}
