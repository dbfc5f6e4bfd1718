package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reelstudio/internal/model"
)

var ErrTemplateNotFound = errors.New("template not found")

type TemplateService struct {
	db *sql.DB
}

func NewTemplateService(db *sql.DB) *TemplateService {
	return &TemplateService{db: db}
}

func (s *TemplateService) ListActive(ctx context.Context) ([]model.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, description, preview_url, active, created_at
		FROM templates
		WHERE active = TRUE
		ORDER BY category, name
	`)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var templates []model.Template
	for rows.Next() {
		var t model.Template
		var desc, preview sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &desc, &preview, &t.Active, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		t.Description = desc.String
		t.PreviewURL = preview.String
		templates = append(templates, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return templates, nil
}

func (s *TemplateService) Create(ctx context.Context, t model.Template) (*model.Template, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO templates (name, category, description, preview_url, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, t.Name, t.Category, t.Description, t.PreviewURL, t.Active).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	return &t, nil
}

func (s *TemplateService) Update(ctx context.Context, id string, t model.Template) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE templates
		SET name = $1, category = $2, description = $3, preview_url = $4, active = $5
		WHERE id = $6
	`, t.Name, t.Category, t.Description, t.PreviewURL, t.Active, id)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return checkAffected(res)
}

func (s *TemplateService) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
