package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/drip/internal/db"
	"github.com/alexanderramin/drip/internal/domain"
)

type SQLiteNodeRepo struct {
	db db.DBTX
}

func NewSQLiteNodeRepo(conn db.DBTX) *SQLiteNodeRepo {
	return &SQLiteNodeRepo{db: conn}
}

// Upsert inserts the node or rewrites every mutable column of an existing
// one. The row keeps its original insertion slot.
func (r *SQLiteNodeRepo) Upsert(ctx context.Context, n *domain.Node) error {
	attrs, err := encodeAttrs(n.Attrs)
	if err != nil {
		return err
	}
	query := `INSERT INTO nodes (campaign_id, id, kind, pos_x, pos_y, attrs, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(campaign_id, id) DO UPDATE SET
			kind = excluded.kind,
			pos_x = excluded.pos_x,
			pos_y = excluded.pos_y,
			attrs = excluded.attrs,
			state = excluded.state,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		n.CampaignID,
		n.ID,
		string(n.Kind),
		n.Position.X,
		n.Position.Y,
		attrs,
		string(n.State),
		formatTime(n.CreatedAt),
		formatTime(n.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting node %s: %w", n.ID, err)
	}
	return nil
}

func (r *SQLiteNodeRepo) ListByCampaign(ctx context.Context, campaignID string) ([]domain.Node, error) {
	query := `SELECT campaign_id, id, kind, pos_x, pos_y, attrs, state, created_at, updated_at
		FROM nodes WHERE campaign_id = ? ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	defer rows.Close()

	var nodes []domain.Node
	for rows.Next() {
		var (
			n                    domain.Node
			kind, attrs, state   string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&n.CampaignID, &n.ID, &kind, &n.Position.X, &n.Position.Y, &attrs, &state, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning node row: %w", err)
		}
		n.Kind = domain.NodeKind(kind)
		n.State = domain.VisualState(state)
		if n.Attrs, err = decodeAttrs(attrs); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		if n.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if n.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nodes: %w", err)
	}
	return nodes, nil
}

// Delete removes a node; its edges go with it through the foreign keys.
func (r *SQLiteNodeRepo) Delete(ctx context.Context, campaignID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM nodes WHERE campaign_id = ? AND id = ?`, campaignID, id)
	if err != nil {
		return fmt.Errorf("deleting node %s: %w", id, err)
	}
	return requireAffected(res, "node")
}
