package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := NewViper()
	cfg := FromViper(v)

	assert.Equal(t, "https://api.neynar.com", cfg.NeynarBaseURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 500, cfg.SearchDelayMs)
	assert.Equal(t, 1, cfg.MaxConcurrency)
	assert.Equal(t, 24, cfg.HoursBack)
	assert.Equal(t, 320, cfg.PublishMaxChars)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Parallel)
}

func TestFromViperReadsEnvironment(t *testing.T) {
	t.Setenv("NEYNAR_API_KEY", "key-123")
	t.Setenv("NEYNAR_BASE_URL", "http://localhost:9999/")
	t.Setenv("SEARCH_DELAY_MS", "0")

	cfg := FromViper(NewViper())

	assert.Equal(t, "key-123", cfg.NeynarAPIKey)
	assert.Equal(t, "http://localhost:9999", cfg.NeynarBaseURL)
	assert.Equal(t, 0, cfg.SearchDelayMs)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	require.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)

	cfg.NeynarAPIKey = "key"
	require.NoError(t, cfg.Validate())

	cfg.CastToFarcaster = true
	require.Error(t, cfg.Validate())

	cfg.NeynarSignerUUID = "signer"
	require.NoError(t, cfg.Validate())
}

func TestTimeWindow(t *testing.T) {
	tests := []struct {
		hours int
		want  string
	}{
		{0, "1h"},
		{1, "1h"},
		{5, "6h"},
		{12, "12h"},
		{24, "24h"},
		{48, "7d"},
	}

	for _, tt := range tests {
		cfg := &Config{HoursBack: tt.hours}
		if got := cfg.TimeWindow(); got != tt.want {
			t.Errorf("TimeWindow(%d) = %q; want %q", tt.hours, got, tt.want)
		}
	}
}
