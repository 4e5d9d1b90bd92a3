package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Security.EnableCORS)
	assert.Equal(t, float64(100), cfg.Security.RateLimit.RPS)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, int64(MaxUploadSize), cfg.Upload.MaxFileSize)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "data/adpulse.db", cfg.Database.Path)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Auth.JWTSecret = "test-secret"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "port above range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "read timeout must be positive",
		},
		{
			name:    "zero write timeout",
			mutate:  func(c *Config) { c.Server.WriteTimeout = 0 },
			wantErr: "write timeout must be positive",
		},
		{
			name:    "no allowed origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origin",
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.Auth.JWTSecret = "" },
			wantErr: "jwt secret",
		},
		{
			name:    "non-positive upload limit",
			mutate:  func(c *Config) { c.Upload.MaxFileSize = 0 },
			wantErr: "max file size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "console"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestMergeConfigs_EnvWins(t *testing.T) {
	fileCfg := *Default()
	fileCfg.Server.Port = 9090
	fileCfg.Auth.JWTSecret = "from-file"

	envCfg := *Default()
	envCfg.Server.Port = 8081
	envCfg.Auth.JWTSecret = "from-env"

	merged := mergeConfigs(fileCfg, envCfg)
	assert.Equal(t, 8081, merged.Server.Port)
	assert.Equal(t, "from-env", merged.Auth.JWTSecret)
}

func TestMergeConfigs_FileFillsGaps(t *testing.T) {
	fileCfg := *Default()
	fileCfg.Server.Port = 9090
	fileCfg.Auth.JWTSecret = "from-file"
	fileCfg.Database.Path = "/var/lib/adpulse.db"

	envCfg := *Default()
	envCfg.Server.Port = 0
	envCfg.Auth.JWTSecret = ""
	envCfg.Database.Path = ""

	merged := mergeConfigs(fileCfg, envCfg)
	assert.Equal(t, 9090, merged.Server.Port)
	assert.Equal(t, "from-file", merged.Auth.JWTSecret)
	assert.Equal(t, "/var/lib/adpulse.db", merged.Database.Path)
}

func TestGetFeatureFlag(t *testing.T) {
	assert.True(t, GetFeatureFlag("metrics"))
	assert.True(t, GetFeatureFlag("health_check"))
	assert.True(t, GetFeatureFlag("rate_limiting"))
	assert.False(t, GetFeatureFlag("mock_data"))
	assert.False(t, GetFeatureFlag("unknown"))
}
