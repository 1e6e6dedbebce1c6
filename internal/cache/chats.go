package cache

import (
	"context"
	"database/sql"

	"github.com/jask/dossier/internal/api"
)

// ChatStore keeps per-case assistant transcripts so reopening a case
// restores the conversation.
type ChatStore struct {
	db *sql.DB
}

func NewChatStore(db *sql.DB) *ChatStore { return &ChatStore{db: db} }

func (s *ChatStore) Append(ctx context.Context, caseID string, msg api.ChatMessage) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO chat_messages(id, case_id, role, body, created_at)
	VALUES(?, ?, ?, ?, ?);
	`, msg.ID, caseID, msg.Role, msg.Body, msg.CreatedAt)
	return err
}

func (s *ChatStore) History(ctx context.Context, caseID string) ([]api.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, role, body, created_at FROM chat_messages
	WHERE case_id = ? ORDER BY created_at ASC, id ASC`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.ChatMessage
	for rows.Next() {
		var m api.ChatMessage
		if err := rows.Scan(&m.ID, &m.Role, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Clear drops the transcript for a case, used when the case is deleted.
func (s *ChatStore) Clear(ctx context.Context, caseID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE case_id = ?`, caseID)
	return err
}
