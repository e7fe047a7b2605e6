package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setCreds(t *testing.T) {
	t.Helper()
	t.Setenv("APCA_API_KEY_ID", "key")
	t.Setenv("APCA_API_SECRET_KEY", "secret")
}

func TestLoadRequiresCredentials(t *testing.T) {
	t.Setenv("APCA_API_KEY_ID", "")
	t.Setenv("APCA_API_SECRET_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	setCreds(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "data/universe.csv", cfg.UniversePath)
	assert.Equal(t, 60, cfg.LookbackDays)
	assert.Equal(t, 365, cfg.RerunLookbackDays)
	assert.Empty(t, cfg.Strategies)
	assert.NotEmpty(t, cfg.Variants(), "empty subset means every registered variant")
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	setCreds(t)
	t.Setenv("STRATLAB_STRATEGIES", "MomentumPullback,NoSuchThing")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NoSuchThing")
}

func TestLoadStrategySubset(t *testing.T) {
	setCreds(t)
	t.Setenv("STRATLAB_STRATEGIES", "MomentumPullback, TrendSpike")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"MomentumPullback", "TrendSpike"}, cfg.Strategies)

	variants := cfg.Variants()
	require.Len(t, variants, 2)
	assert.Equal(t, "MomentumPullback", variants[0].Name)
}

func TestLoadRejectsBadLookback(t *testing.T) {
	setCreds(t)
	t.Setenv("STRATLAB_LOOKBACK_DAYS", "soon")

	_, err := Load()
	assert.Error(t, err)
}
