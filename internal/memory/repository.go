package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by delete-by-id/key when nothing matched.
var ErrNotFound = errors.New("memory not found")

// Repository defines memory persistence operations.
type Repository interface {
	Find(ctx context.Context, userID, key, memoryType string) (*Record, error)
	Upsert(ctx context.Context, userID, key, memoryType string, value json.RawMessage) (*Record, bool, error)
	DeleteMatching(ctx context.Context, userID, pattern string) ([]Record, error)
	Search(ctx context.Context, userID, query string, limit int) ([]Record, error)
	ListByUser(ctx context.Context, userID, memoryType string) ([]Record, error)
	GetByKey(ctx context.Context, userID, key string) (*Record, error)
	DeleteByID(ctx context.Context, userID string, id uuid.UUID) error
	DeleteByKey(ctx context.Context, userID, key string) error
}

// PostgresRepository implements Repository against the chat_memory table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new memory repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const recordColumns = `id, "userId", key, value, "memoryType", "createdAt", "updatedAt"`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Key, &rec.Value, &rec.MemoryType, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Find returns the record for the (userID, key, memoryType) triple, or nil
// when absent.
func (r *PostgresRepository) Find(ctx context.Context, userID, key, memoryType string) (*Record, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM chat_memory
		 WHERE "userId" = $1 AND key = $2 AND "memoryType" = $3`,
		userID, key, memoryType,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding memory: %w", err)
	}
	return rec, nil
}

// Upsert inserts or overwrites the record for the (userID, key, memoryType)
// triple atomically and returns it along with whether a new row was created.
// The ON CONFLICT target is the unique index on the triple, so concurrent
// identical-key updates cannot produce duplicates; last write wins.
func (r *PostgresRepository) Upsert(ctx context.Context, userID, key, memoryType string, value json.RawMessage) (*Record, bool, error) {
	var rec Record
	var inserted bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO chat_memory (id, "userId", key, value, "memoryType", "createdAt", "updatedAt")
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 ON CONFLICT ("userId", key, "memoryType")
		 DO UPDATE SET value = EXCLUDED.value, "updatedAt" = NOW()
		 RETURNING `+recordColumns+`, (xmax = 0)`,
		uuid.New(), userID, key, value, memoryType,
	).Scan(&rec.ID, &rec.UserID, &rec.Key, &rec.Value, &rec.MemoryType, &rec.CreatedAt, &rec.UpdatedAt, &inserted)
	if err != nil {
		return nil, false, fmt.Errorf("upserting memory: %w", err)
	}
	return &rec, inserted, nil
}

// DeleteMatching removes every record for the user whose key or serialized
// value contains the pattern, case-insensitively, across all memory types.
// Deleted records are returned; an empty result is not an error.
func (r *PostgresRepository) DeleteMatching(ctx context.Context, userID, pattern string) ([]Record, error) {
	rows, err := r.pool.Query(ctx,
		`DELETE FROM chat_memory
		 WHERE "userId" = $1
		 AND (key ILIKE $2 OR value::text ILIKE $2)
		 RETURNING `+recordColumns,
		userID, "%"+pattern+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("deleting matching memories: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// Search finds records in the durable partitions whose key or value contains
// the query, most recently updated first.
func (r *PostgresRepository) Search(ctx context.Context, userID, query string, limit int) ([]Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM chat_memory
		 WHERE "userId" = $1
		 AND (key ILIKE $2 OR value::text ILIKE $2)
		 AND "memoryType" IN ($3, $4)
		 ORDER BY "updatedAt" DESC
		 LIMIT $5`,
		userID, "%"+query+"%", TypeLongTerm, TypeEntity, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching memories: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ListByUser returns all records for the user, optionally restricted to one
// memory type ("" or "all" lists every partition).
func (r *PostgresRepository) ListByUser(ctx context.Context, userID, memoryType string) ([]Record, error) {
	var rows pgx.Rows
	var err error
	if memoryType == "" || memoryType == "all" {
		rows, err = r.pool.Query(ctx,
			`SELECT `+recordColumns+` FROM chat_memory WHERE "userId" = $1 ORDER BY "updatedAt" DESC`,
			userID,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+recordColumns+` FROM chat_memory
			 WHERE "userId" = $1 AND "memoryType" = $2 ORDER BY "updatedAt" DESC`,
			userID, memoryType,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing memories: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// GetByKey returns the first record with the given key for the user across
// all memory types, or nil when absent.
func (r *PostgresRepository) GetByKey(ctx context.Context, userID, key string) (*Record, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM chat_memory WHERE "userId" = $1 AND key = $2`,
		userID, key,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting memory: %w", err)
	}
	return rec, nil
}

// DeleteByID removes a single record by identifier.
func (r *PostgresRepository) DeleteByID(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM chat_memory WHERE "userId" = $1 AND id = $2`,
		userID, id,
	)
	if err != nil {
		return fmt.Errorf("deleting memory by id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByKey removes every record with an exact key match for the user.
func (r *PostgresRepository) DeleteByKey(ctx context.Context, userID, key string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM chat_memory WHERE "userId" = $1 AND key = $2`,
		userID, key,
	)
	if err != nil {
		return fmt.Errorf("deleting memory by key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectRecords(rows pgx.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Key, &rec.Value, &rec.MemoryType, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning memory: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
