package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentforge/candidate-os/internal/domain/candidate"
	"github.com/talentforge/candidate-os/internal/domain/ingest"
	"github.com/talentforge/candidate-os/pkg/apperror"
	"github.com/talentforge/candidate-os/pkg/logger"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresProfileRepo is the upsert engine. It implements both
// candidate.Repository and ingest.ProfileStore against the same pool.
type PostgresProfileRepo struct {
	db     *pgxpool.Pool
	window int
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, window int, log logger.Logger) *PostgresProfileRepo {
	if window <= 0 {
		window = 50
	}
	return &PostgresProfileRepo{db: db, window: window, logger: log}
}

const upsertCandidateSQL = `
	INSERT INTO candidates (
		id, name, headline, location, location_normalized,
		current_title, current_org, seniority, skills,
		years_experience, worked_at_startup, attributes, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		headline = EXCLUDED.headline,
		location = EXCLUDED.location,
		location_normalized = EXCLUDED.location_normalized,
		current_title = EXCLUDED.current_title,
		current_org = EXCLUDED.current_org,
		seniority = EXCLUDED.seniority,
		skills = EXCLUDED.skills,
		years_experience = EXCLUDED.years_experience,
		worked_at_startup = EXCLUDED.worked_at_startup,
		attributes = EXCLUDED.attributes,
		updated_at = EXCLUDED.updated_at
`

// upsertTx writes one profile inside an open transaction: full parent
// overwrite keyed by the natural identifier, then children deleted and
// reinserted wholesale. Never a partial-field patch, never a child diff.
func (r *PostgresProfileRepo) upsertTx(ctx context.Context, tx pgx.Tx, p *candidate.CanonicalProfile) error {
	attributes, err := json.Marshal(p.Attributes)
	if err != nil {
		return fmt.Errorf("cannot encode attributes: %w", err)
	}

	_, err = tx.Exec(ctx, upsertCandidateSQL,
		p.ID, p.Name, p.Headline, p.Location, p.LocationNormalized,
		p.CurrentTitle, p.CurrentOrg, string(p.Seniority), p.Skills,
		p.YearsExperience, p.WorkedAtStartup, attributes, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert candidate row: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM positions WHERE candidate_id = $1`, p.ID); err != nil {
		return fmt.Errorf("delete stale positions: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM education WHERE candidate_id = $1`, p.ID); err != nil {
		return fmt.Errorf("delete stale education: %w", err)
	}

	batch := &pgx.Batch{}
	for _, pos := range p.Positions {
		batch.Queue(`
			INSERT INTO positions (candidate_id, ordinal, org, title, summary, start_date, end_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.ID, pos.Ordinal, pos.Org, pos.Title, pos.Summary, pos.Start, pos.End,
		)
	}
	for _, edu := range p.Education {
		batch.Queue(`
			INSERT INTO education (candidate_id, ordinal, school, degree, field, summary, start_date, end_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.ID, edu.Ordinal, edu.School, edu.Degree, edu.Field, edu.Summary, edu.Start, edu.End,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert child rows: %w", err)
		}
	}
	return nil
}

func (r *PostgresProfileRepo) Upsert(ctx context.Context, p *candidate.CanonicalProfile) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return r.upsertTx(ctx, tx, p)
	})
}

// UpsertMany writes profiles in fixed-size windows; the window bounds memory
// and transaction count, each profile is still independently atomic.
func (r *PostgresProfileRepo) UpsertMany(ctx context.Context, profiles []*candidate.CanonicalProfile) error {
	for start := 0; start < len(profiles); start += r.window {
		end := start + r.window
		if end > len(profiles) {
			end = len(profiles)
		}
		for _, p := range profiles[start:end] {
			if err := r.Upsert(ctx, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// Save upserts the profile and writes its persisted checkpoint in one
// transaction, so "persisted" in the checkpoint table always implies the
// row exists.
func (r *PostgresProfileRepo) Save(ctx context.Context, p *candidate.CanonicalProfile, batchID string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := r.upsertTx(ctx, tx, p); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO ingest_checkpoints (batch_id, record_id, status, step, reason, updated_at)
			VALUES ($1, $2, $3, '', '', now())
			ON CONFLICT (batch_id, record_id) DO UPDATE SET
				status = EXCLUDED.status, step = '', reason = '', updated_at = now()`,
			batchID, p.ID, string(ingest.StatusPersisted),
		)
		if err != nil {
			return fmt.Errorf("write persisted checkpoint: %w", err)
		}
		return nil
	})
}

func (r *PostgresProfileRepo) PersistedIDs(ctx context.Context, batchID string) (map[string]bool, error) {
	sql, args, err := psql.Select("record_id").
		From("ingest_checkpoints").
		Where(sq.Eq{"batch_id": batchID, "status": string(ingest.StatusPersisted)}).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build checkpoint query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, r.classify(ctx, "load persisted checkpoints", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperror.NewPersistence("failed to scan checkpoint row", err)
		}
		ids[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewPersistence("error iterating checkpoint rows", err)
	}
	return ids, nil
}

func (r *PostgresProfileRepo) RecordFailure(ctx context.Context, batchID string, f ingest.RecordFailure) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO ingest_checkpoints (batch_id, record_id, status, step, reason, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (batch_id, record_id) DO UPDATE SET
			status = EXCLUDED.status, step = EXCLUDED.step,
			reason = EXCLUDED.reason, updated_at = now()`,
		batchID, f.ID, string(ingest.StatusFailed), string(f.Step), f.Reason,
	)
	if err != nil {
		return r.classify(ctx, "write failure checkpoint", err)
	}
	return nil
}

func (r *PostgresProfileRepo) Healthy(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *PostgresProfileRepo) GetByID(ctx context.Context, id string) (*candidate.CanonicalProfile, error) {
	sql, args, err := psql.Select(
		"id", "name", "headline", "location", "location_normalized",
		"current_title", "current_org", "seniority", "skills",
		"years_experience", "worked_at_startup", "attributes", "updated_at",
	).From("candidates").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build candidate query", err)
	}

	p := &candidate.CanonicalProfile{}
	var seniority string
	var attributes []byte
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&p.ID, &p.Name, &p.Headline, &p.Location, &p.LocationNormalized,
		&p.CurrentTitle, &p.CurrentOrg, &seniority, &p.Skills,
		&p.YearsExperience, &p.WorkedAtStartup, &attributes, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, candidate.ErrProfileNotFound
		}
		return nil, apperror.NewPersistence("failed to scan candidate row", err)
	}
	p.Seniority = candidate.Seniority(seniority)
	if len(attributes) > 0 {
		if err := json.Unmarshal(attributes, &p.Attributes); err != nil {
			p.Attributes = map[string]any{}
		}
	}

	if p.Positions, err = r.loadPositions(ctx, id); err != nil {
		return nil, err
	}
	if p.Education, err = r.loadEducation(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresProfileRepo) loadPositions(ctx context.Context, id string) ([]candidate.Position, error) {
	sql, args, err := psql.Select("ordinal", "org", "title", "summary", "start_date", "end_date").
		From("positions").
		Where(sq.Eq{"candidate_id": id}).
		OrderBy("ordinal").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build positions query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewPersistence("failed to query positions", err)
	}
	defer rows.Close()

	positions := make([]candidate.Position, 0)
	for rows.Next() {
		var pos candidate.Position
		if err := rows.Scan(&pos.Ordinal, &pos.Org, &pos.Title, &pos.Summary, &pos.Start, &pos.End); err != nil {
			return nil, apperror.NewPersistence("failed to scan position row", err)
		}
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

func (r *PostgresProfileRepo) loadEducation(ctx context.Context, id string) ([]candidate.EducationEntry, error) {
	sql, args, err := psql.Select("ordinal", "school", "degree", "field", "summary", "start_date", "end_date").
		From("education").
		Where(sq.Eq{"candidate_id": id}).
		OrderBy("ordinal").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build education query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewPersistence("failed to query education", err)
	}
	defer rows.Close()

	entries := make([]candidate.EducationEntry, 0)
	for rows.Next() {
		var e candidate.EducationEntry
		if err := rows.Scan(&e.Ordinal, &e.School, &e.Degree, &e.Field, &e.Summary, &e.Start, &e.End); err != nil {
			return nil, apperror.NewPersistence("failed to scan education row", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresProfileRepo) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return r.classify(ctx, "begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return r.classify(ctx, "transaction body", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return r.classify(ctx, "commit transaction", err)
	}
	return nil
}

// classify separates a store-connectivity loss, which is fatal to a whole
// batch, from an ordinary persistence failure affecting one record.
func (r *PostgresProfileRepo) classify(ctx context.Context, op string, err error) error {
	if pingErr := r.db.Ping(ctx); pingErr != nil {
		return apperror.NewUnavailable(op, err)
	}
	return apperror.NewPersistence(op, err)
}
