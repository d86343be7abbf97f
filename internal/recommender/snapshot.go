package recommender

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/mat"

	"github.com/cinematch/cinematch/internal/domain"
)

// SnapshotFormatVersion identifies the on-disk snapshot layout. Bump it
// whenever a field changes meaning so stale files are rejected instead of
// silently misread.
const SnapshotFormatVersion = 1

// Snapshot is the explicit serialized form of a trained model: axis ids,
// the rating matrix and both similarity matrices, plus enough metadata to
// audit where it came from. The catalog is not part of the snapshot; it
// is owned by the database and re-joined on load.
type Snapshot struct {
	FormatVersion int       `json:"format_version"`
	SnapshotID    string    `json:"snapshot_id"`
	TrainedAt     time.Time `json:"trained_at"`

	UserIDs  []int64 `json:"user_ids"`
	MovieIDs []int64 `json:"movie_ids"`

	Ratings  [][]float64 `json:"ratings"`
	UserSim  [][]float64 `json:"user_similarity"`
	MovieSim [][]float64 `json:"movie_similarity"`

	Config Config `json:"config"`
}

// Snapshot captures the model's full trained state.
func (m *Model) Snapshot() *Snapshot {
	return &Snapshot{
		FormatVersion: SnapshotFormatVersion,
		SnapshotID:    m.ID,
		TrainedAt:     m.TrainedAt,
		UserIDs:       m.matrix.users,
		MovieIDs:      m.matrix.movies,
		Ratings:       denseRows(m.matrix.data),
		UserSim:       denseRows(m.userSim.data),
		MovieSim:      denseRows(m.movieSim.data),
		Config:        m.cfg,
	}
}

// WriteFile persists the snapshot atomically: written to a temp file in
// the target directory, then renamed into place, so a crashed write never
// leaves a half-written snapshot behind.
func (s *Snapshot) WriteFile(path string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads and validates a snapshot file.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.FormatVersion != SnapshotFormatVersion {
		return nil, fmt.Errorf("snapshot format version %d, want %d", s.FormatVersion, SnapshotFormatVersion)
	}
	if len(s.Ratings) != len(s.UserIDs) {
		return nil, fmt.Errorf("snapshot has %d rating rows for %d users", len(s.Ratings), len(s.UserIDs))
	}
	return &s, nil
}

// Restore rebuilds a servable model from a snapshot and the current
// catalog without recomputing similarities.
func Restore(s *Snapshot, movies []domain.Movie) (*Model, error) {
	users := len(s.UserIDs)
	items := len(s.MovieIDs)
	if users == 0 || items == 0 {
		return nil, domain.ErrEmptyRatings
	}

	matrix := &RatingMatrix{
		users:      s.UserIDs,
		movies:     s.MovieIDs,
		userIndex:  indexOf(s.UserIDs),
		movieIndex: indexOf(s.MovieIDs),
		data:       denseFrom(s.Ratings, users, items),
	}

	catalog := make(map[int64]domain.Movie, len(movies))
	for _, mv := range movies {
		catalog[mv.ID] = mv
	}

	return &Model{
		ID:        s.SnapshotID,
		TrainedAt: s.TrainedAt,
		cfg:       s.Config.withDefaults(),
		matrix:    matrix,
		userSim: &SimilarityMatrix{
			ids:   s.UserIDs,
			index: matrix.userIndex,
			data:  denseFrom(s.UserSim, users, users),
		},
		movieSim: &SimilarityMatrix{
			ids:   s.MovieIDs,
			index: matrix.movieIndex,
			data:  denseFrom(s.MovieSim, items, items),
		},
		catalog: catalog,
	}, nil
}

func denseRows(d *mat.Dense) [][]float64 {
	rows, cols := d.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		copy(row, d.RawRowView(i))
		out[i] = row
	}
	return out
}

func denseFrom(rows [][]float64, r, c int) *mat.Dense {
	d := mat.NewDense(r, c, nil)
	for i, row := range rows {
		for j, v := range row {
			d.Set(i, j, v)
		}
	}
	return d
}

func indexOf(ids []int64) map[int64]int {
	idx := make(map[int64]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}
	return idx
}
