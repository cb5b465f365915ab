package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/drip/internal/db"
	"github.com/alexanderramin/drip/internal/domain"
)

const publicationColumns = `id, campaign_id, email_count, plan_json, channel, created_at`

type SQLitePublicationRepo struct {
	db db.DBTX
}

func NewSQLitePublicationRepo(conn db.DBTX) *SQLitePublicationRepo {
	return &SQLitePublicationRepo{db: conn}
}

func (r *SQLitePublicationRepo) Create(ctx context.Context, p *domain.Publication) error {
	query := `INSERT INTO publications (` + publicationColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.CampaignID,
		p.EmailCount,
		string(p.PlanJSON),
		p.Channel,
		formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting publication: %w", err)
	}
	return nil
}

// ListByCampaign returns the newest publications first. A limit of zero or
// less returns all of them.
func (r *SQLitePublicationRepo) ListByCampaign(ctx context.Context, campaignID string, limit int) ([]*domain.Publication, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT ` + publicationColumns + ` FROM publications
		WHERE campaign_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing publications: %w", err)
	}
	defer rows.Close()

	var pubs []*domain.Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating publications: %w", err)
	}
	return pubs, nil
}

func (r *SQLitePublicationRepo) Latest(ctx context.Context, campaignID string) (*domain.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications
		WHERE campaign_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`
	return scanPublication(r.db.QueryRowContext(ctx, query, campaignID))
}

func scanPublication(s scanner) (*domain.Publication, error) {
	var p domain.Publication
	var plan, createdAt string
	if err := s.Scan(&p.ID, &p.CampaignID, &p.EmailCount, &plan, &p.Channel, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("publication: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning publication: %w", err)
	}
	p.PlanJSON = []byte(plan)

	var err error
	if p.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &p, nil
}
