// Package audit persists an append-only trail of privileged actions.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type auditDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Record is one audited admin action, e.g. a role change.
type Record struct {
	ID        string          `json:"id"`
	ActorID   string          `json:"actorId"`
	Action    string          `json:"action"`
	TargetID  string          `json:"targetId"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

const ActionRoleChange = "user.role_change"

type Writer struct {
	DB auditDB
}

func (w *Writer) Append(ctx context.Context, rec Record) error {
	_, err := w.DB.Exec(ctx, `
		INSERT INTO audit_records (id, actor_id, action, target_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.ID, rec.ActorID, rec.Action, rec.TargetID, rec.Detail, rec.CreatedAt)
	return err
}

// ListRecent returns the newest records, newest first.
func (w *Writer) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := w.DB.Query(ctx, `
		SELECT id, actor_id, action, target_id, detail, created_at
		FROM audit_records ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := []Record{}
	for rows.Next() {
		var rec Record
		var detail json.RawMessage
		if err := rows.Scan(&rec.ID, &rec.ActorID, &rec.Action, &rec.TargetID, &detail, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Detail = detail
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RoleChangeDetail serializes the before/after roles for a role-change record.
func RoleChangeDetail(oldRole, newRole string) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"from": oldRole, "to": newRole})
	return b
}
