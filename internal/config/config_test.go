package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10000, cfg.Generator.Records)
	assert.Equal(t, uint64(42), cfg.Generator.Seed)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Generator.StartDate)
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), cfg.Generator.EndDate)
	assert.Equal(t, "data/sales_data.csv", cfg.Analyzer.DataFile)
	assert.Equal(t, cfg.Analyzer.DataFile, cfg.Dashboard.DataFile)
	assert.Equal(t, 10, cfg.Analyzer.TopN)
	assert.Equal(t, DefaultSegmentThresholds(), cfg.Analyzer.Segments)
	assert.Equal(t, "dashboards", cfg.Dashboard.OutputDir)
	assert.Equal(t, "127.0.0.1:8084", cfg.Address())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SALES_RECORDS", "500")
	t.Setenv("SALES_SEED", "7")
	t.Setenv("SALES_START_DATE", "2024-01-01")
	t.Setenv("SALES_DATA_FILE", "out/sales.csv")
	t.Setenv("SALES_SEGMENT_VIP_SPEND", "5000.5")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("SECURITY_TRUSTED_PROXIES", "10.0.0.1,10.0.0.2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Generator.Records)
	assert.Equal(t, uint64(7), cfg.Generator.Seed)
	assert.Equal(t, 2024, cfg.Generator.StartDate.Year())
	assert.Equal(t, "out/sales.csv", cfg.Dashboard.DataFile)
	assert.Equal(t, 5000.5, cfg.Analyzer.Segments.VIPMinSpend)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Security.TrustedProxies)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("SALES_RECORDS", "many")
	t.Setenv("SERVER_READ_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10000, cfg.Generator.Records)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"bad start date", "SALES_START_DATE", "01/01/2023", "SALES_START_DATE"},
		{"bad end date", "SALES_END_DATE", "2024-13-01", "SALES_END_DATE"},
		{"port out of range", "SERVER_PORT", "70000", "server port"},
		{"log level", "LOG_LEVEL", "verbose", "invalid log level"},
		{"log format", "LOG_FORMAT", "xml", "invalid log format"},
		{"workers", "DASHBOARD_WORKERS", "0", "dashboard workers"},
		{"rate limit", "SECURITY_RATE_LIMIT_RPS", "-1", "rate limit RPS"},
		{"negative regular orders", "SALES_SEGMENT_REGULAR_ORDERS", "-1", "segment thresholds"},
		{"negative vip orders", "SALES_SEGMENT_VIP_ORDERS", "-3", "segment thresholds"},
		{"negative vip spend", "SALES_SEGMENT_VIP_SPEND", "-0.5", "segment thresholds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSegmentThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultSegmentThresholds().Validate())
	assert.NoError(t, SegmentThresholds{}.Validate())
	assert.Error(t, SegmentThresholds{VIPMinOrders: 5, VIPMinSpend: 2000, RegularMinOrders: -1}.Validate())
}
