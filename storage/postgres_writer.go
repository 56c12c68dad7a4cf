package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"marketplace-analyzer/models"
)

const snapshotColumns = 14

// PostgresWriter persists scored listings to PostgreSQL, one row per
// (session, listing key).
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listing_snapshots (
			id              SERIAL PRIMARY KEY,
			session_id      UUID          NOT NULL,
			keyword         TEXT          NOT NULL DEFAULT '',
			listing_key     TEXT          NOT NULL,
			external_id     TEXT          NOT NULL DEFAULT '',
			title           TEXT          NOT NULL,
			price           NUMERIC(12,2) NOT NULL DEFAULT 0,
			secondary_text  TEXT          NOT NULL DEFAULT '',
			detected_at     TIMESTAMPTZ   NOT NULL,
			category        VARCHAR(20),
			tier            VARCHAR(32),
			score           NUMERIC(8,2),
			savings_percent NUMERIC(8,2),
			suspicious      BOOLEAN       NOT NULL DEFAULT FALSE,
			scam_reasons    TEXT[]        NOT NULL DEFAULT '{}',
			created_at      TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
			UNIQUE (session_id, listing_key)
		);

		CREATE INDEX IF NOT EXISTS idx_snapshots_keyword ON listing_snapshots(keyword);
		CREATE INDEX IF NOT EXISTS idx_snapshots_tier    ON listing_snapshots(tier);
	`)
	return err
}

// Write batch-inserts the rows. Rows already stored for the same session and
// key are left untouched.
func (pw *PostgresWriter) Write(rows []models.ScoredListing) error {
	const batchSize = 50
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := pw.insertBatch(rows[i:end]); err != nil {
			return fmt.Errorf("postgres: insert batch: %w", err)
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []models.ScoredListing) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*snapshotColumns)

	for idx, r := range batch {
		placeholders := make([]string, snapshotColumns)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", idx*snapshotColumns+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		var category, tier sql.NullString
		var score, savings sql.NullFloat64
		if res := r.Result; res != nil {
			category = sql.NullString{String: string(res.Category), Valid: true}
			tier = sql.NullString{String: string(res.Tier), Valid: true}
			score = sql.NullFloat64{Float64: res.Score, Valid: true}
			savings = sql.NullFloat64{Float64: res.SavingsPercent, Valid: true}
		}
		reasons := r.Scam.Reasons
		if reasons == nil {
			reasons = []string{}
		}
		valueArgs = append(valueArgs,
			r.SessionID, r.Keyword, r.Key, r.Record.Title, r.Record.Price,
			r.Record.SecondaryText, r.Record.DetectedAt, category, tier, score, savings,
			r.Scam.Suspicious, pq.Array(reasons), r.Record.ExternalID)
	}

	query := fmt.Sprintf(`
		INSERT INTO listing_snapshots (session_id, keyword, listing_key, title, price,
			secondary_text, detected_at, category, tier, score, savings_percent,
			suspicious, scam_reasons, external_id)
		VALUES %s
		ON CONFLICT (session_id, listing_key) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchSession retrieves the rows stored for one session, in detection order.
func (pw *PostgresWriter) FetchSession(sessionID string) ([]models.ScoredListing, error) {
	rows, err := pw.db.Query(`
		SELECT session_id, keyword, listing_key, external_id, title, price, secondary_text,
			detected_at, category, tier, score, savings_percent, suspicious, scam_reasons
		FROM listing_snapshots
		WHERE session_id = $1
		ORDER BY detected_at, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch session: %w", err)
	}
	defer rows.Close()

	var out []models.ScoredListing
	for rows.Next() {
		var (
			r              models.ScoredListing
			category, tier sql.NullString
			score, savings sql.NullFloat64
			reasons        pq.StringArray
		)
		if err := rows.Scan(
			&r.SessionID, &r.Keyword, &r.Key, &r.Record.ExternalID, &r.Record.Title,
			&r.Record.Price, &r.Record.SecondaryText, &r.Record.DetectedAt,
			&category, &tier, &score, &savings, &r.Scam.Suspicious, &reasons,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		if category.Valid {
			r.Result = &models.AnalysisResult{
				Category:       models.Category(category.String),
				Tier:           models.Tier(tier.String),
				Score:          score.Float64,
				SavingsPercent: savings.Float64,
			}
		}
		r.Scam.Reasons = []string(reasons)
		out = append(out, r)
	}
	return out, rows.Err()
}
