package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	assert.Equal(t, 50, cfg.MaxConcurrentJobs)
	assert.Equal(t, 1000, cfg.MaxOutputLines)
	assert.Equal(t, 5*1<<20, cfg.MaxOutputBytes)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("DELA_MAX_CONCURRENT_JOBS", "5")
	t.Setenv("DELA_JOB_TTL_SECONDS", "60")

	cfg := LoadConfig()
	assert.Equal(t, 5, cfg.MaxConcurrentJobs)
	assert.Equal(t, 60, int(cfg.JobTTL.Seconds()))
}
