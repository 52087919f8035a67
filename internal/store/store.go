package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/pkg/logger"
)

// Destinations that select the database sink instead of a file
const (
	DestPostgres = "postgres"
	DestDB       = "db"
)

// ErrUnsupportedDestination is returned for a destination with no sink
var ErrUnsupportedDestination = errors.New("unsupported destination (use *.csv, *.json or postgres)")

// Store persists ranked scorecards to CSV, JSON or the scorecard.results table
// ⭐ SSOT: 결과 저장은 여기서만
type Store struct {
	pool   *pgxpool.Pool // nil이면 postgres 싱크 사용 불가
	logger *logger.Logger
	runID  string
}

// New creates a new result store. pool may be nil for file-only use.
func New(pool *pgxpool.Pool, log *logger.Logger) *Store {
	return &Store{
		pool:   pool,
		logger: log.WithField("module", "store"),
	}
}

// ForRun returns a copy that tags database rows with runID
func (s *Store) ForRun(runID string) *Store {
	c := *s
	c.runID = runID
	return &c
}

// Save writes ranked results to destination.
// 실패 시 *contracts.PersistenceError, 메모리의 결과는 건드리지 않음
func (s *Store) Save(ctx context.Context, ranked []contracts.RankedScorecard, destination string) error {
	if err := s.save(ctx, ranked, destination); err != nil {
		return &contracts.PersistenceError{Destination: destination, Err: err}
	}
	return nil
}

// SaveRun saves the ranked results of one batch run, tagging database rows with runID
func (s *Store) SaveRun(ctx context.Context, runID string, ranked []contracts.RankedScorecard, destination string) error {
	return s.ForRun(runID).Save(ctx, ranked, destination)
}

// Prune deletes database rows analysed before the given day
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	if s.pool == nil {
		return 0, errors.New("database is not configured")
	}
	return pruneResults(ctx, s.pool, before)
}

// SaveScreeningResults saves and reports success; failures are logged, never returned
func (s *Store) SaveScreeningResults(ctx context.Context, ranked []contracts.RankedScorecard, destination string) bool {
	if err := s.Save(ctx, ranked, destination); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"destination": destination,
			"count":       len(ranked),
		}).Error("Failed to save screening results")
		return false
	}

	s.logger.WithFields(map[string]interface{}{
		"destination": destination,
		"count":       len(ranked),
	}).Info("Screening results saved")
	return true
}

func (s *Store) save(ctx context.Context, ranked []contracts.RankedScorecard, destination string) error {
	switch kind := destinationKind(destination); kind {
	case DestPostgres:
		if s.pool == nil {
			return errors.New("database is not configured")
		}
		return saveResults(ctx, s.pool, s.runID, ranked)
	case ".csv":
		header, records := FlattenAll(ranked)
		return writeFileAtomic(destination, func(w io.Writer) error {
			return writeCSV(w, header, records)
		})
	case ".json":
		_, records := FlattenAll(ranked)
		return writeFileAtomic(destination, func(w io.Writer) error {
			return writeJSON(w, records)
		})
	default:
		return ErrUnsupportedDestination
	}
}

// Load reads previously saved records back from source.
// "postgres"는 최신 분석일, "postgres:2026-03-02"는 해당 분석일
func (s *Store) Load(ctx context.Context, source string) ([]Record, error) {
	if date, ok := strings.CutPrefix(strings.ToLower(source), DestPostgres+":"); ok {
		day, err := time.Parse(DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("invalid analysis date %q: %w", date, err)
		}
		return s.loadPostgres(ctx, &day)
	}

	switch destinationKind(source) {
	case DestPostgres:
		return s.loadPostgres(ctx, nil)
	case ".csv":
		return readFile(source, readCSV)
	case ".json":
		return readFile(source, readJSON)
	default:
		return nil, ErrUnsupportedDestination
	}
}

func (s *Store) loadPostgres(ctx context.Context, day *time.Time) ([]Record, error) {
	if s.pool == nil {
		return nil, errors.New("database is not configured")
	}
	return loadResults(ctx, s.pool, day)
}

func readFile(path string, read func(io.Reader) ([]Record, error)) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return read(f)
}

// destinationKind returns DestPostgres or the lower-cased file extension
func destinationKind(destination string) string {
	d := strings.ToLower(strings.TrimSpace(destination))
	if d == DestPostgres || d == DestDB {
		return DestPostgres
	}
	return strings.ToLower(filepath.Ext(d))
}
