package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/drip/internal/db"
	"github.com/alexanderramin/drip/internal/domain"
)

const campaignColumns = `id, name, next_seq, created_at, updated_at`

type SQLiteCampaignRepo struct {
	db db.DBTX
}

func NewSQLiteCampaignRepo(conn db.DBTX) *SQLiteCampaignRepo {
	return &SQLiteCampaignRepo{db: conn}
}

func (r *SQLiteCampaignRepo) Create(ctx context.Context, c *domain.Campaign) error {
	query := `INSERT INTO campaigns (id, name, next_seq, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.NextSeq,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting campaign: %w", err)
	}
	return nil
}

func (r *SQLiteCampaignRepo) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id)
	return r.scanCampaign(row)
}

func (r *SQLiteCampaignRepo) GetByName(ctx context.Context, name string) (*domain.Campaign, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE name = ?`, name)
	return r.scanCampaign(row)
}

func (r *SQLiteCampaignRepo) List(ctx context.Context) ([]*domain.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+campaignColumns+` FROM campaigns ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*domain.Campaign
	for rows.Next() {
		c, err := r.scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating campaigns: %w", err)
	}
	return campaigns, nil
}

func (r *SQLiteCampaignRepo) Update(ctx context.Context, c *domain.Campaign) error {
	query := `UPDATE campaigns SET name = ?, next_seq = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, c.Name, c.NextSeq, formatTime(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("updating campaign: %w", err)
	}
	return requireAffected(res, "campaign")
}

func (r *SQLiteCampaignRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting campaign: %w", err)
	}
	return requireAffected(res, "campaign")
}

func (r *SQLiteCampaignRepo) scanCampaign(s scanner) (*domain.Campaign, error) {
	var c domain.Campaign
	var createdAt, updatedAt string
	if err := s.Scan(&c.ID, &c.Name, &c.NextSeq, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("campaign: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning campaign: %w", err)
	}

	var err error
	if c.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &c, nil
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected %s rows: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
