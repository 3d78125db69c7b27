package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"roadwatch/internal/models"
	"roadwatch/internal/recordstore"
)

// RecordRepository persists record-store entries in the 'records' table.
// Upsert implements last-write-survives; there is no transactional
// guarantee across keys.
type RecordRepository interface {
	Upsert(key string, entry models.HistoryEntry) error
	ScanByPrefix(prefix string) ([]recordstore.KeyedEntry, error)
}

type recordRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewRecordRepository(db *sqlx.DB, logger *zap.Logger) RecordRepository {
	return &recordRepository{db: db, logger: logger}
}

func (r *recordRepository) Upsert(key string, entry models.HistoryEntry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	query := `INSERT INTO records (key, value, updated_at) VALUES ($1, $2, NOW())
	          ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := r.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

func (r *recordRepository) ScanByPrefix(prefix string) ([]recordstore.KeyedEntry, error) {
	query := `SELECT key, value FROM records WHERE key LIKE $1 ESCAPE '\' ORDER BY key`

	rows, err := r.db.Queryx(query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to scan records: %w", err)
	}
	defer rows.Close()

	var out []recordstore.KeyedEntry
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to read record row: %w", err)
		}

		var entry models.HistoryEntry
		if err := json.Unmarshal(value, &entry); err != nil {
			// A single undecodable value should not hide the rest of
			// the user's history.
			r.logger.Warn("Skipping undecodable record", zap.String("key", key), zap.Error(err))
			continue
		}
		out = append(out, recordstore.KeyedEntry{Key: key, Entry: entry})
	}
	return out, rows.Err()
}

// escapeLike neutralizes LIKE metacharacters in user-derived prefixes.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
