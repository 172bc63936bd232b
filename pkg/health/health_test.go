package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-opsgraph/pkg/storage"
)

func TestWorstStatusWins(t *testing.T) {
	checker := NewChecker()
	checker.RegisterReadinessCheck("good", func() Check {
		return Check{Name: "good", Status: StatusHealthy}
	})
	checker.RegisterReadinessCheck("bad", func() Check {
		return Check{Name: "bad", Status: StatusUnhealthy, Message: "down"}
	})

	resp := checker.CheckReadiness()
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestDegradedDoesNotOverrideUnhealthy(t *testing.T) {
	checker := NewChecker()
	checker.RegisterReadinessCheck("bad", func() Check {
		return Check{Status: StatusUnhealthy}
	})
	checker.RegisterReadinessCheck("meh", func() Check {
		return Check{Status: StatusDegraded}
	})

	assert.Equal(t, StatusUnhealthy, checker.CheckReadiness().Status)
}

func TestStoreCheck(t *testing.T) {
	store := storage.NewGraphStore(nil)

	// Empty store is degraded, not unhealthy.
	check := StoreCheck(store)()
	assert.Equal(t, StatusDegraded, check.Status)

	_, err := store.ReplaceGraph([]storage.Node{
		{ID: 1, Label: "Plant A", Type: storage.TypeFacility},
	}, nil)
	require.NoError(t, err)
	check = StoreCheck(store)()
	assert.Equal(t, StatusHealthy, check.Status)

	require.NoError(t, store.Close())
	check = StoreCheck(store)()
	assert.Equal(t, StatusUnhealthy, check.Status)
}

func TestLivenessIsIndependentOfReadiness(t *testing.T) {
	checker := NewChecker()
	checker.RegisterLivenessCheck("process", ProcessCheck())
	checker.RegisterReadinessCheck("bad", func() Check {
		return Check{Status: StatusUnhealthy}
	})

	assert.Equal(t, StatusHealthy, checker.CheckLiveness().Status)
	assert.Equal(t, StatusUnhealthy, checker.CheckReadiness().Status)
}
