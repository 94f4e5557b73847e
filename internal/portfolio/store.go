package portfolio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads portfolio content from PostgreSQL.
// All queries are read-only; content is managed out of band.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// ListWorkExperiences returns all positions, most recent first.
func (s *Store) ListWorkExperiences(ctx context.Context) ([]WorkExperience, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, job_title, company, start_date, end_date, description
		FROM work_experiences
		ORDER BY start_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying work experiences: %w", err)
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (WorkExperience, error) {
		var we WorkExperience
		err := row.Scan(&we.ID, &we.JobTitle, &we.Company, &we.StartDate, &we.EndDate, &we.Description)
		return we, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning work experiences: %w", err)
	}
	return items, nil
}

// ListProjects returns all projects in insertion order.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, description, technologies, repository_url, live_url
		FROM projects
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Project, error) {
		var p Project
		err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Technologies, &p.RepositoryURL, &p.LiveURL)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning projects: %w", err)
	}
	return items, nil
}

// ListCertifications returns all certifications, most recently issued first.
func (s *Store) ListCertifications(ctx context.Context) ([]Certification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, issuer, date_issued, credential_url
		FROM certifications
		ORDER BY date_issued DESC NULLS LAST, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying certifications: %w", err)
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Certification, error) {
		var c Certification
		err := row.Scan(&c.ID, &c.Name, &c.Issuer, &c.DateIssued, &c.CredentialURL)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning certifications: %w", err)
	}
	return items, nil
}

// ListPublishedPosts returns published posts only, newest first.
// Drafts never reach the API or the chat knowledge base.
func (s *Store) ListPublishedPosts(ctx context.Context) ([]Post, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, slug, content, is_published, published_at
		FROM posts
		WHERE is_published
		ORDER BY published_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Post, error) {
		var p Post
		err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.IsPublished, &p.PublishedAt)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning posts: %w", err)
	}
	return items, nil
}
