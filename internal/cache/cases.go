package cache

import (
	"context"
	"database/sql"

	"github.com/jask/dossier/internal/api"
)

// CaseCache snapshots the server's case list.
type CaseCache struct {
	db *sql.DB
}

func NewCaseCache(db *sql.DB) *CaseCache { return &CaseCache{db: db} }

// Replace swaps the whole snapshot for the latest fetch.
func (c *CaseCache) Replace(ctx context.Context, cases []api.Case) error {
	return WithTx(c.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cases`); err != nil {
			return err
		}
		now := Now()
		for _, cs := range cases {
			_, err := tx.ExecContext(ctx, `
			INSERT INTO cases(id, name, transaction_type, status, confidence_score,
			 pinned, summary, document_count, updated_at, fetched_at)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
			`, cs.ID, cs.Name, cs.TransactionType, cs.Status, cs.ConfidenceScore,
				cs.Pinned, cs.Summary, cs.DocumentCount, cs.UpdatedAt, now)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns the cached snapshot, newest first.
func (c *CaseCache) List(ctx context.Context) ([]api.Case, error) {
	rows, err := c.db.QueryContext(ctx, `
	SELECT id, name, transaction_type, status, confidence_score, pinned,
	 summary, document_count, updated_at
	FROM cases ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.Case
	for rows.Next() {
		var cs api.Case
		if err := rows.Scan(&cs.ID, &cs.Name, &cs.TransactionType, &cs.Status,
			&cs.ConfidenceScore, &cs.Pinned, &cs.Summary, &cs.DocumentCount, &cs.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}
