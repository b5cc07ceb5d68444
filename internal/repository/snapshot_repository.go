package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/apperrors"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
)

// SnapshotRepository provides data access methods for the analytics_snapshot table.
// Every stored result is kept as its own row, so the table doubles as an audit
// trail; the latest row per agent and kind is the agent's current state.
type SnapshotRepository struct {
	db  *sql.DB
	tx  *sql.Tx
	now func() time.Time
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithTx returns a new SnapshotRepository scoped to the provided transaction.
func (r *SnapshotRepository) WithTx(tx *sql.Tx) *SnapshotRepository {
	return &SnapshotRepository{
		db:  r.db,
		tx:  tx,
		now: r.now,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *SnapshotRepository) getQuerier() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// InsertSnapshot stores one analytics result as a JSON payload and returns the stored row.
func (r *SnapshotRepository) InsertSnapshot(ctx context.Context, agentID string, kind model.SnapshotKind, payload any) (model.StoredSnapshot, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return model.StoredSnapshot{}, fmt.Errorf("failed to encode %s snapshot: %w", kind, err)
	}

	s := model.StoredSnapshot{
		ID:        uuid.New().String(),
		AgentID:   agentID,
		Kind:      kind,
		Payload:   data,
		CreatedAt: r.now(),
	}

	query := `
        INSERT INTO analytics_snapshot (id, agent_id, kind, payload, created_at)
        VALUES (?, ?, ?, ?, ?)
    `

	_, err = r.getQuerier().ExecContext(ctx, query,
		s.ID,
		s.AgentID,
		string(s.Kind),
		string(s.Payload),
		FormatTime(s.CreatedAt),
	)
	if err != nil {
		return model.StoredSnapshot{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToStoreSnapshot, err)
	}

	return s, nil
}

// GetSnapshot retrieves a single stored snapshot by its ID.
// Returns apperrors.ErrSnapshotNotFound if no row has that ID.
func (r *SnapshotRepository) GetSnapshot(ctx context.Context, id string) (model.StoredSnapshot, error) {
	query := `
        SELECT id, agent_id, kind, payload, created_at
        FROM analytics_snapshot
        WHERE id = ?
    `

	s, err := scanSnapshot(r.getQuerier().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.StoredSnapshot{}, apperrors.ErrSnapshotNotFound
	}
	if err != nil {
		return model.StoredSnapshot{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveSnapshot, err)
	}
	return s, nil
}

// GetSnapshots retrieves the stored rows of one kind for an agent, oldest first.
// Returns an empty slice if none exist.
func (r *SnapshotRepository) GetSnapshots(ctx context.Context, agentID string, kind model.SnapshotKind) ([]model.StoredSnapshot, error) {
	query := `
        SELECT id, agent_id, kind, payload, created_at
        FROM analytics_snapshot
        WHERE agent_id = ? AND kind = ?
        ORDER BY rowid ASC
    `

	return r.querySnapshots(ctx, query, agentID, string(kind))
}

// GetLatestSnapshots retrieves the most recent row of every kind stored for an agent.
// Returns an empty slice if the agent has no rows.
func (r *SnapshotRepository) GetLatestSnapshots(ctx context.Context, agentID string) ([]model.StoredSnapshot, error) {
	query := `
        SELECT s.id, s.agent_id, s.kind, s.payload, s.created_at
        FROM analytics_snapshot s
        WHERE s.agent_id = ?
        AND s.rowid = (
            SELECT MAX(rowid) FROM analytics_snapshot
            WHERE agent_id = s.agent_id AND kind = s.kind
        )
        ORDER BY s.rowid ASC
    `

	return r.querySnapshots(ctx, query, agentID)
}

// GetAgentIDs returns the distinct agent IDs with stored rows, sorted.
func (r *SnapshotRepository) GetAgentIDs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT agent_id FROM analytics_snapshot ORDER BY agent_id`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveAgents, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan agent id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agent ids: %w", err)
	}
	return ids, nil
}

func (r *SnapshotRepository) querySnapshots(ctx context.Context, query string, args ...any) ([]model.StoredSnapshot, error) {
	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveSnapshot, err)
	}
	defer rows.Close()

	snapshots := []model.StoredSnapshot{}
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analytics_snapshot results: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analytics_snapshot table: %w", err)
	}
	return snapshots, nil
}

func scanSnapshot(row interface{ Scan(dest ...any) error }) (model.StoredSnapshot, error) {
	var (
		s         model.StoredSnapshot
		kind      string
		payload   string
		createdAt string
	)
	if err := row.Scan(&s.ID, &s.AgentID, &kind, &payload, &createdAt); err != nil {
		return model.StoredSnapshot{}, err
	}

	t, err := ParseTime(createdAt)
	if err != nil {
		return model.StoredSnapshot{}, err
	}
	s.Kind = model.SnapshotKind(kind)
	s.Payload = json.RawMessage(payload)
	s.CreatedAt = t
	return s, nil
}

// SQLiteResultsStore is a results store backed by SnapshotRepository.
// Writes serialize on the single database connection; every write is kept,
// and reads decode the latest row per kind.
type SQLiteResultsStore struct {
	repo *SnapshotRepository
}

// NewSQLiteResultsStore creates a results store over the analytics_snapshot table.
func NewSQLiteResultsStore(db *sql.DB) *SQLiteResultsStore {
	return &SQLiteResultsStore{repo: NewSnapshotRepository(db)}
}

// PutMetrics stores a performance metrics row.
func (s *SQLiteResultsStore) PutMetrics(ctx context.Context, agentID string, m model.PerformanceMetrics) error {
	_, err := s.repo.InsertSnapshot(ctx, agentID, model.KindMetrics, m)
	return err
}

// PutRisk stores a risk metrics row.
func (s *SQLiteResultsStore) PutRisk(ctx context.Context, agentID string, r model.RiskMetrics) error {
	_, err := s.repo.InsertSnapshot(ctx, agentID, model.KindRisk, r)
	return err
}

// PutAttribution stores an attribution row.
func (s *SQLiteResultsStore) PutAttribution(ctx context.Context, agentID string, a model.PerformanceAttribution) error {
	_, err := s.repo.InsertSnapshot(ctx, agentID, model.KindAttribution, a)
	return err
}

// PutBenchmark stores a benchmark comparison row.
func (s *SQLiteResultsStore) PutBenchmark(ctx context.Context, agentID string, b model.BenchmarkComparison) error {
	_, err := s.repo.InsertSnapshot(ctx, agentID, model.KindBenchmark, b)
	return err
}

type snapshotPart struct {
	kind    model.SnapshotKind
	payload any
}

// PutSnapshot stores one row per non-nil part of the snapshot inside a single
// transaction, so Latest never assembles parts from two different publishes.
func (s *SQLiteResultsStore) PutSnapshot(ctx context.Context, agentID string, snapshot model.AgentSnapshot) error {
	var parts []snapshotPart
	if snapshot.Metrics != nil {
		parts = append(parts, snapshotPart{model.KindMetrics, snapshot.Metrics})
	}
	if snapshot.Risk != nil {
		parts = append(parts, snapshotPart{model.KindRisk, snapshot.Risk})
	}
	if snapshot.Attribution != nil {
		parts = append(parts, snapshotPart{model.KindAttribution, snapshot.Attribution})
	}
	if snapshot.Benchmark != nil {
		parts = append(parts, snapshotPart{model.KindBenchmark, snapshot.Benchmark})
	}
	if len(parts) == 0 {
		return nil
	}

	tx, err := s.repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	repo := s.repo.WithTx(tx)
	for _, part := range parts {
		if _, err := repo.InsertSnapshot(ctx, agentID, part.kind, part.payload); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot transaction: %w", err)
	}
	return nil
}

// Latest assembles the agent's snapshot from the newest row of each kind.
// Returns apperrors.ErrAgentNotFound if the agent has no rows.
func (s *SQLiteResultsStore) Latest(ctx context.Context, agentID string) (model.AgentSnapshot, error) {
	rows, err := s.repo.GetLatestSnapshots(ctx, agentID)
	if err != nil {
		return model.AgentSnapshot{}, err
	}
	if len(rows) == 0 {
		return model.AgentSnapshot{}, apperrors.ErrAgentNotFound
	}

	snapshot := model.AgentSnapshot{AgentID: agentID}
	for _, row := range rows {
		if err := decodeInto(&snapshot, row); err != nil {
			return model.AgentSnapshot{}, err
		}
		if row.CreatedAt.After(snapshot.UpdatedAt) {
			snapshot.UpdatedAt = row.CreatedAt
		}
	}
	return snapshot, nil
}

// MetricsHistory decodes every stored metrics row for the agent, oldest first.
// Returns apperrors.ErrAgentNotFound if the agent has no rows at all.
func (s *SQLiteResultsStore) MetricsHistory(ctx context.Context, agentID string) ([]model.PerformanceMetrics, error) {
	rows, err := s.repo.GetSnapshots(ctx, agentID, model.KindMetrics)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		if _, err := s.Latest(ctx, agentID); err != nil {
			return nil, err
		}
	}

	history := make([]model.PerformanceMetrics, len(rows))
	for i, row := range rows {
		if err := json.Unmarshal(row.Payload, &history[i]); err != nil {
			return nil, fmt.Errorf("failed to decode metrics snapshot %s: %w", row.ID, err)
		}
	}
	return history, nil
}

// Agents returns the IDs of all agents with stored rows, sorted.
func (s *SQLiteResultsStore) Agents(ctx context.Context) ([]string, error) {
	return s.repo.GetAgentIDs(ctx)
}

// Snapshot returns a single stored row by ID.
func (s *SQLiteResultsStore) Snapshot(ctx context.Context, id string) (model.StoredSnapshot, error) {
	return s.repo.GetSnapshot(ctx, id)
}

func decodeInto(snapshot *model.AgentSnapshot, row model.StoredSnapshot) error {
	var target any
	switch row.Kind {
	case model.KindMetrics:
		snapshot.Metrics = &model.PerformanceMetrics{}
		target = snapshot.Metrics
	case model.KindRisk:
		snapshot.Risk = &model.RiskMetrics{}
		target = snapshot.Risk
	case model.KindAttribution:
		snapshot.Attribution = &model.PerformanceAttribution{}
		target = snapshot.Attribution
	case model.KindBenchmark:
		snapshot.Benchmark = &model.BenchmarkComparison{}
		target = snapshot.Benchmark
	default:
		return fmt.Errorf("unknown snapshot kind %q", row.Kind)
	}
	if err := json.Unmarshal(row.Payload, target); err != nil {
		return fmt.Errorf("failed to decode %s snapshot %s: %w", row.Kind, row.ID, err)
	}
	return nil
}
