package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-music-platform/internal/db"
)

func TestPlanCreate_DuplicateName(t *testing.T) {
	f := newFixture()
	f.plan(t, "Gold")

	_, err := f.plans.Create(context.Background(), db.MembershipPlan{Name: "Gold", Price: 1, Description: "again"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPlanUpdate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	gold := f.plan(t, "Gold")
	f.plan(t, "Basic")

	got, err := f.plans.Update(ctx, gold.ID, db.MembershipPlan{Name: "Gold", Price: 12.5, Description: "yearly"})
	require.NoError(t, err)
	assert.InDelta(t, 12.5, got.Price, 0.001)

	_, err = f.plans.Update(ctx, gold.ID, db.MembershipPlan{Name: "Basic", Price: 1, Description: "x"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.plans.Update(ctx, 999, db.MembershipPlan{Name: "Other", Description: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlanDelete_GuardedBySubscribers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	gold := f.plan(t, "Gold")
	u := f.user(t, "ana", "12345678")

	_, err := f.users.Subscribe(ctx, u.ID, gold.ID)
	require.NoError(t, err)

	subscribers, err := f.plans.Subscribers(ctx, gold.ID)
	require.NoError(t, err)
	require.Len(t, subscribers, 1)
	assert.Equal(t, u.ID, subscribers[0].ID)

	require.ErrorIs(t, f.plans.Delete(ctx, gold.ID), ErrConflict)

	_, err = f.users.Cancel(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, f.plans.Delete(ctx, gold.ID))

	_, err = f.plans.Subscribers(ctx, gold.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
