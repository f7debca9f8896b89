package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-insights/internal/config"
	"sales-insights/internal/dashboard"
	"sales-insights/internal/dataset"
	apperrors "sales-insights/internal/errors"
	"sales-insights/internal/generator"
)

func TestRun_RendersDashboards(t *testing.T) {
	dir := t.TempDir()
	g, err := generator.New(config.DefaultCatalog(), nil)
	require.NoError(t, err)
	records, err := g.Generate(context.Background(), generator.Config{Records: 300, Seed: 4})
	require.NoError(t, err)

	data := filepath.Join(dir, "sales_data.csv")
	require.NoError(t, dataset.SaveCSV(data, records))

	out := filepath.Join(dir, "dashboards")
	cfg := config.DashboardConfig{DataFile: data, OutputDir: out, TopN: 10, Workers: 2}
	require.NoError(t, run(context.Background(), slog.New(slog.DiscardHandler), cfg))

	for _, name := range dashboard.Files {
		info, err := os.Stat(filepath.Join(out, name))
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestRun_MissingInput(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DashboardConfig{DataFile: filepath.Join(dir, "absent.csv"), OutputDir: filepath.Join(dir, "out")}

	err := run(context.Background(), slog.New(slog.DiscardHandler), cfg)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeMissingInput))

	_, statErr := os.Stat(cfg.OutputDir)
	assert.True(t, os.IsNotExist(statErr), "nothing rendered without input")
}
