package services

import (
	"dispatch-route-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsWithDefaults(t *testing.T) {
	assert.Equal(t, DefaultOptions(), Options{}.WithDefaults())

	custom := Options{DetourMultiplier: 1.2, MaxTwoOptScans: 5}.WithDefaults()
	assert.Equal(t, 1.2, custom.DetourMultiplier)
	assert.Equal(t, 5, custom.MaxTwoOptScans)
	assert.Equal(t, DefaultMaxClusterRounds, custom.MaxClusterRounds)
	assert.Equal(t, DefaultImprovementEpsilonKm, custom.ImprovementEpsilonKm)
}

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	err := Options{DetourMultiplier: 0.9, MaxClusterRounds: 0, MaxTwoOptScans: -1, ImprovementEpsilonKm: 0}.Validate()
	require.Error(t, err)
	for _, field := range []string{"detour_multiplier", "max_cluster_rounds", "max_two_opt_scans", "improvement_epsilon_km"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestNewOptimizerAppliesDefaults(t *testing.T) {
	opt := NewOptimizer(Options{}, nil)
	assert.Equal(t, DefaultOptions(), opt.Options())
}

func TestNewOptimizerReplacesInvalidOptions(t *testing.T) {
	opt := NewOptimizer(Options{
		DetourMultiplier:     0.5,
		MaxClusterRounds:     -1,
		MaxTwoOptScans:       -3,
		ImprovementEpsilonKm: -0.1,
	}, nil)
	assert.Equal(t, DefaultOptions(), opt.Options())

	var res domain.DispatchResult
	require.NotPanics(t, func() {
		res = NewOptimizer(Options{MaxClusterRounds: -1}, nil).Propose(
			[]domain.Order{order("a", 35.0, 139.0, 1), order("b", 35.1, 139.1, 1)},
			[]domain.Vehicle{{ID: "v1", Capacity: 10}},
			nil,
		)
	})
	require.Len(t, res.Plans, 1)
	assert.Equal(t, []string{"a", "b"}, sortedIDs(res.Plans[0].Orders()))
	assert.Empty(t, res.Unassigned)
}
