package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/osusu/internal/rosca"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, rosca.MarkPermissive, cfg.MarkMode())
	assert.Equal(t, 5*time.Minute, cfg.ReminderWindow())
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())

	cps, err := cfg.Checkpoints()
	require.NoError(t, err)
	assert.Equal(t, rosca.DefaultCheckpoints, cps)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PAYOUT_MARK_MODE", "strict")
	t.Setenv("REMINDER_CHECKPOINTS", "06:30")
	t.Setenv("REMINDER_TIMEZONE", "Africa/Accra")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, rosca.MarkStrict, cfg.MarkMode())
	cps, err := cfg.Checkpoints()
	require.NoError(t, err)
	assert.Equal(t, []rosca.Checkpoint{{Hour: 6, Minute: 30}}, cps)
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Africa/Accra", loc.String())
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"default secret in production", map[string]string{"ENVIRONMENT": "production"}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "postgres"}},
		{"mongo without uri", map[string]string{"STORE_DRIVER": "mongo"}},
		{"bad mark mode", map[string]string{"PAYOUT_MARK_MODE": "lenient"}},
		{"bad checkpoint", map[string]string{"REMINDER_CHECKPOINTS": "7am"}},
		{"bad timezone", map[string]string{"REMINDER_TIMEZONE": "Mars/Olympus"}},
		{"bad metrics path", map[string]string{"METRICS_PATH": "metrics"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := load(viper.New())
			assert.Error(t, err)
		})
	}
}
