package job

import (
	"time"

	"github.com/spf13/viper"
)

// LoadConfig overlays DELA_MAX_CONCURRENT_JOBS / DELA_MAX_OUTPUT_LINES_PER_JOB
// / DELA_MAX_OUTPUT_BYTES_PER_JOB / DELA_JOB_TTL_SECONDS /
// DELA_GC_INTERVAL_SECONDS environment variables on top of DefaultConfig,
// the way firestige-Otus resolves daemon tuning through viper (spec.md
// §4.9 defaults apply whenever a variable is unset).
func LoadConfig() Config {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("DELA")
	v.AutomaticEnv()

	v.SetDefault("max_concurrent_jobs", cfg.MaxConcurrentJobs)
	v.SetDefault("max_output_lines_per_job", cfg.MaxOutputLines)
	v.SetDefault("max_output_bytes_per_job", cfg.MaxOutputBytes)
	v.SetDefault("job_ttl_seconds", int(cfg.JobTTL.Seconds()))
	v.SetDefault("gc_interval_seconds", int(cfg.GCInterval.Seconds()))

	cfg.MaxConcurrentJobs = v.GetInt("max_concurrent_jobs")
	cfg.MaxOutputLines = v.GetInt("max_output_lines_per_job")
	cfg.MaxOutputBytes = v.GetInt("max_output_bytes_per_job")
	cfg.JobTTL = time.Duration(v.GetInt("job_ttl_seconds")) * time.Second
	cfg.GCInterval = time.Duration(v.GetInt("gc_interval_seconds")) * time.Second

	return cfg
}
