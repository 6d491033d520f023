package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/electroitzone/report-dashboard/backend-go/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports", "march")

	path, err := fileSink(dir)(&export.Artifact{Filename: "Sales Report_2024-03-07.csv", Data: []byte("# Brand Summary\n")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Sales Report_2024-03-07.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Brand Summary\n", string(data))
}

func TestFileSinkReportsWriteErrors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := fileSink(file)(&export.Artifact{Filename: "x.csv"})
	assert.Error(t, err)
}
