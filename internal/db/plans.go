package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// planRepo handles membership plan database operations.
type planRepo struct {
	q querier
}

const planColumns = `id, name, price, description`

func scanPlan(row pgx.Row) (*MembershipPlan, error) {
	var p MembershipPlan
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Description); err != nil {
		return nil, err
	}
	return &p, nil
}

// List retrieves all plans ordered by ID.
func (r *planRepo) List(ctx context.Context) ([]MembershipPlan, error) {
	rows, err := r.q.Query(ctx, `SELECT `+planColumns+` FROM membership_plans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	var plans []MembershipPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

// Get retrieves a plan by ID.
func (r *planRepo) Get(ctx context.Context, id int64) (*MembershipPlan, error) {
	p, err := scanPlan(r.q.QueryRow(ctx, `SELECT `+planColumns+` FROM membership_plans WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying plan: %w", err)
	}
	return p, nil
}

// FindByName retrieves a plan by exact name.
func (r *planRepo) FindByName(ctx context.Context, name string) (*MembershipPlan, error) {
	p, err := scanPlan(r.q.QueryRow(ctx, `SELECT `+planColumns+` FROM membership_plans WHERE name = $1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying plan by name: %w", err)
	}
	return p, nil
}

// Save inserts or updates a plan.
func (r *planRepo) Save(ctx context.Context, plan *MembershipPlan) error {
	if plan.ID == 0 {
		query := `
			INSERT INTO membership_plans (name, price, description)
			VALUES ($1, $2, $3)
			RETURNING id
		`
		if err := r.q.QueryRow(ctx, query, plan.Name, plan.Price, plan.Description).Scan(&plan.ID); err != nil {
			return fmt.Errorf("inserting plan: %w", classify(err))
		}
		return nil
	}

	query := `
		UPDATE membership_plans
		SET name = $2, price = $3, description = $4
		WHERE id = $1
	`
	result, err := r.q.Exec(ctx, query, plan.ID, plan.Name, plan.Price, plan.Description)
	if err != nil {
		return fmt.Errorf("updating plan: %w", classify(err))
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a plan by ID.
func (r *planRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM membership_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
