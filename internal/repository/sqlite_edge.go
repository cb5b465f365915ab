package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/drip/internal/db"
	"github.com/alexanderramin/drip/internal/domain"
)

type SQLiteEdgeRepo struct {
	db db.DBTX
}

func NewSQLiteEdgeRepo(conn db.DBTX) *SQLiteEdgeRepo {
	return &SQLiteEdgeRepo{db: conn}
}

// Upsert inserts the edge or refreshes its state. Endpoints and port are
// part of the id and never change.
func (r *SQLiteEdgeRepo) Upsert(ctx context.Context, e *domain.Edge) error {
	query := `INSERT INTO edges (campaign_id, id, source, target, source_port, state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(campaign_id, id) DO UPDATE SET state = excluded.state`
	_, err := r.db.ExecContext(ctx, query,
		e.CampaignID,
		e.ID,
		e.Source,
		e.Target,
		string(e.SourcePort),
		string(e.State),
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting edge %s: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteEdgeRepo) ListByCampaign(ctx context.Context, campaignID string) ([]domain.Edge, error) {
	query := `SELECT campaign_id, id, source, target, source_port, state, created_at
		FROM edges WHERE campaign_id = ? ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("listing edges: %w", err)
	}
	defer rows.Close()

	var edges []domain.Edge
	for rows.Next() {
		var e domain.Edge
		var port, state, createdAt string
		if err := rows.Scan(&e.CampaignID, &e.ID, &e.Source, &e.Target, &port, &state, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning edge row: %w", err)
		}
		e.SourcePort = domain.Port(port)
		e.State = domain.VisualState(state)
		if e.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating edges: %w", err)
	}
	return edges, nil
}

func (r *SQLiteEdgeRepo) Delete(ctx context.Context, campaignID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM edges WHERE campaign_id = ? AND id = ?`, campaignID, id)
	if err != nil {
		return fmt.Errorf("deleting edge %s: %w", id, err)
	}
	return requireAffected(res, "edge")
}
