package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reelstudio/internal/model"
)

var (
	ErrInsufficientCredits = errors.New("insufficient video credits")
	ErrProjectNotFound     = errors.New("project not found")
	ErrInvalidStatus       = errors.New("invalid project status")
)

var projectStatuses = map[string]bool{
	"submitted":     true,
	"in_production": true,
	"delivered":     true,
}

type ProjectService struct {
	db *sql.DB
}

func NewProjectService(db *sql.DB) *ProjectService {
	return &ProjectService{db: db}
}

type ProjectParams struct {
	Title    string
	Brief    string
	Template string
}

// Submit records one briefing and debits one video credit in the same
// transaction. The balance row is locked for the duration so two concurrent
// submissions cannot both spend the last credit.
func (s *ProjectService) Submit(ctx context.Context, userID string, p ProjectParams) (*model.Project, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var credits int
	err = tx.QueryRowContext(ctx,
		`SELECT video_credits FROM users WHERE id = $1 FOR UPDATE`,
		userID,
	).Scan(&credits)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get credits: %w", err)
	}

	if credits < 1 {
		return nil, ErrInsufficientCredits
	}

	var tmpl sql.NullString
	if p.Template != "" {
		tmpl = sql.NullString{String: p.Template, Valid: true}
	}

	project := &model.Project{
		UserID:   userID,
		Title:    p.Title,
		Brief:    p.Brief,
		Template: p.Template,
		Status:   "submitted",
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO projects (user_id, title, brief, template)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, userID, p.Title, p.Brief, tmpl).Scan(&project.ID, &project.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET video_credits = video_credits - 1 WHERE id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("debit credit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return project, nil
}

func (s *ProjectService) ListByUser(ctx context.Context, userID string) ([]model.Project, error) {
	return s.list(ctx, `
		SELECT id, user_id, title, brief, template, status, created_at
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

func (s *ProjectService) ListAll(ctx context.Context) ([]model.Project, error) {
	return s.list(ctx, `
		SELECT id, user_id, title, brief, template, status, created_at
		FROM projects
		ORDER BY created_at DESC
	`)
}

func (s *ProjectService) list(ctx context.Context, query string, args ...any) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		var tmpl sql.NullString
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Brief, &tmpl, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.Template = tmpl.String
		projects = append(projects, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return projects, nil
}

func (s *ProjectService) UpdateStatus(ctx context.Context, projectID, status string) error {
	if !projectStatuses[status] {
		return ErrInvalidStatus
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET status = $1 WHERE id = $2`,
		status, projectID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrProjectNotFound
	}

	return nil
}
