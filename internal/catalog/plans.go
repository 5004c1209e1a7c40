package catalog

import (
	"context"
	"fmt"

	"github.com/justestif/go-music-platform/internal/db"
)

// PlanService manages membership plans.
type PlanService struct {
	store db.Store
}

// NewPlanService creates a PlanService.
func NewPlanService(store db.Store) *PlanService {
	return &PlanService{store: store}
}

func planID(p *db.MembershipPlan) int64 { return p.ID }

func getPlan(ctx context.Context, tx db.Tx, id int64) (*db.MembershipPlan, error) {
	p, err := tx.Plans().Get(ctx, id)
	return lookup(p, err, "membership plan", id)
}

// List returns every plan.
func (s *PlanService) List(ctx context.Context) ([]db.MembershipPlan, error) {
	return inTx(ctx, s.store, func(tx db.Tx) ([]db.MembershipPlan, error) {
		plans, err := tx.Plans().List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing plans: %w", err)
		}
		return plans, nil
	})
}

// Get returns one plan.
func (s *PlanService) Get(ctx context.Context, id int64) (*db.MembershipPlan, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*db.MembershipPlan, error) {
		return getPlan(ctx, tx, id)
	})
}

// Subscribers returns the users holding a plan.
func (s *PlanService) Subscribers(ctx context.Context, id int64) ([]db.User, error) {
	return inTx(ctx, s.store, func(tx db.Tx) ([]db.User, error) {
		if _, err := getPlan(ctx, tx, id); err != nil {
			return nil, err
		}
		users, err := tx.Users().ListByPlan(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("listing plan subscribers: %w", err)
		}
		return users, nil
	})
}

// Create stores a new plan. The name must not already be taken.
func (s *PlanService) Create(ctx context.Context, plan db.MembershipPlan) (*db.MembershipPlan, error) {
	plan.ID = 0
	return inTx(ctx, s.store, func(tx db.Tx) (*db.MembershipPlan, error) {
		found, err := tx.Plans().FindByName(ctx, plan.Name)
		if err := unique(found, err, planID, 0, "plan name", plan.Name); err != nil {
			return nil, err
		}
		if err := tx.Plans().Save(ctx, &plan); err != nil {
			return nil, fmt.Errorf("saving plan: %w", err)
		}
		return &plan, nil
	})
}

// Update replaces a plan's fields. The new name must not belong to another plan.
func (s *PlanService) Update(ctx context.Context, id int64, changes db.MembershipPlan) (*db.MembershipPlan, error) {
	return inTx(ctx, s.store, func(tx db.Tx) (*db.MembershipPlan, error) {
		plan, err := getPlan(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		found, err := tx.Plans().FindByName(ctx, changes.Name)
		if err := unique(found, err, planID, id, "plan name", changes.Name); err != nil {
			return nil, err
		}
		plan.Name = changes.Name
		plan.Price = changes.Price
		plan.Description = changes.Description
		if err := tx.Plans().Save(ctx, plan); err != nil {
			return nil, fmt.Errorf("saving plan: %w", err)
		}
		return plan, nil
	})
}

// Delete removes a plan nobody subscribes to.
func (s *PlanService) Delete(ctx context.Context, id int64) error {
	return s.store.InTx(ctx, func(tx db.Tx) error {
		if _, err := getPlan(ctx, tx, id); err != nil {
			return err
		}
		subscribers, err := tx.Users().ListByPlan(ctx, id)
		if err != nil {
			return fmt.Errorf("listing plan subscribers: %w", err)
		}
		if len(subscribers) > 0 {
			return conflict("membership plan %d has %d subscriber(s)", id, len(subscribers))
		}
		if err := tx.Plans().Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting plan: %w", err)
		}
		return nil
	})
}
