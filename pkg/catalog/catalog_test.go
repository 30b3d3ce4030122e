package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	plan, err := Resolve("3gb")
	require.NoError(t, err)
	assert.Equal(t, 3000, plan.MemoryMB)
	assert.Equal(t, 2000, plan.DiskMB)
	assert.Equal(t, 80, plan.CPUPercent)
	assert.Equal(t, int64(25000), plan.Price)
}

func TestResolveUnlimited(t *testing.T) {
	plan, err := Resolve("unlimited")
	require.NoError(t, err)
	// zero means no cap on the panel side
	assert.Equal(t, 0, plan.MemoryMB)
	assert.Equal(t, 0, plan.DiskMB)
	assert.Equal(t, 0, plan.CPUPercent)
}

func TestResolveUnknown(t *testing.T) {
	_, err := Resolve("11gb")
	assert.ErrorIs(t, err, ErrUnknownPlan)

	_, err = Resolve("")
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestPlansOrderingAndPrices(t *testing.T) {
	plans := Plans()
	require.Len(t, plans, 11)
	assert.Equal(t, "1gb", plans[0].ID)
	assert.Equal(t, "unlimited", plans[len(plans)-1].ID)

	// prices rise with the tier
	for i := 1; i < len(plans); i++ {
		assert.Greater(t, plans[i].Price, plans[i-1].Price,
			"plan %s should cost more than %s", plans[i].ID, plans[i-1].ID)
	}
}
