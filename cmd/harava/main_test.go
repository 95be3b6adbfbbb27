package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/harava/config"
)

func TestHandleHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	handleHealthz(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestHandleReadyz_NotReady(t *testing.T) {
	ready.Store(false)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()

	handleReadyz(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "not ready", w.Body.String())
}

func TestHandleReadyz_Ready(t *testing.T) {
	markReady()
	defer ready.Store(false)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()

	handleReadyz(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestBuildEmitter_Stdout(t *testing.T) {
	em, err := buildEmitter(config.OutputConfig{Format: "ndjson", Path: "-"})
	require.NoError(t, err)
	assert.NoError(t, em.Close())
}

func TestBuildEmitter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resources.ndjson")

	em, err := buildEmitter(config.OutputConfig{Format: "ndjson", Path: path})
	require.NoError(t, err)
	require.NoError(t, em.Close())

	assert.FileExists(t, path)
}

func TestBuildEmitter_Dir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	em, err := buildEmitter(config.OutputConfig{Format: "dir", Path: dir})
	require.NoError(t, err)
	require.NoError(t, em.Close())

	assert.DirExists(t, dir)
}

func TestBuildStrategy_UnknownMode(t *testing.T) {
	cfg := &config.Config{}
	cfg.Account.Mode = "bogus"

	_, err := buildStrategy(t.Context(), cfg)
	assert.Error(t, err)
}

func TestApplyExportFlags(t *testing.T) {
	exportKinds = []string{"AWS::EC2::Instance"}
	exportOutput = "./out.ndjson"
	exportPolicy = "export.rego"
	exportBatchSize = 25
	defer func() {
		exportKinds = nil
		exportOutput = ""
		exportPolicy = ""
		exportBatchSize = 0
	}()

	cfg := &config.Config{}
	cfg.Export.Kinds = []string{"AWS::S3::Bucket"}
	cfg.Export.BatchSize = 100
	cfg.Output.Path = "-"

	applyExportFlags(cfg)

	assert.Equal(t, []string{"AWS::EC2::Instance"}, cfg.Export.Kinds)
	assert.Equal(t, "./out.ndjson", cfg.Output.Path)
	assert.Equal(t, "export.rego", cfg.PolicyFile)
	assert.Equal(t, 25, cfg.Export.BatchSize)
}
