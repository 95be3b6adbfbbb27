package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/harava/types"
)

// mockEmitter implements Emitter for testing.
type mockEmitter struct {
	emitCalls  int
	closeCalls int
	emitErr    error
	closeErr   error
	batches    []Batch
}

func (m *mockEmitter) Emit(_ context.Context, batch Batch) error {
	m.emitCalls++
	m.batches = append(m.batches, batch)
	return m.emitErr
}

func (m *mockEmitter) Close() error {
	m.closeCalls++
	return m.closeErr
}

func instanceBatch() Batch {
	return Batch{
		Kind: "AWS::EC2::Instance",
		Docs: []types.Document{
			{
				Type:       "AWS::EC2::Instance",
				Properties: map[string]any{"InstanceId": "i-123"},
				AccountID:  "123456789012",
				Region:     "us-east-1",
			},
			{
				Type:       "AWS::EC2::Instance",
				Properties: map[string]any{"InstanceId": "i-456"},
				AccountID:  "123456789012",
				Region:     "us-east-1",
			},
		},
	}
}

func TestMultiEmitter_Emit(t *testing.T) {
	e1 := &mockEmitter{}
	e2 := &mockEmitter{}
	multi := NewMultiEmitter(e1, e2)

	err := multi.Emit(context.Background(), instanceBatch())

	require.NoError(t, err)
	assert.Equal(t, 1, e1.emitCalls)
	assert.Equal(t, 1, e2.emitCalls)
	assert.Len(t, e1.batches, 1)
	assert.Len(t, e2.batches, 1)
}

func TestMultiEmitter_Emit_Error(t *testing.T) {
	e1 := &mockEmitter{emitErr: errors.New("emit failed")}
	e2 := &mockEmitter{}
	multi := NewMultiEmitter(e1, e2)

	err := multi.Emit(context.Background(), Batch{})

	assert.Error(t, err)
	assert.Equal(t, 1, e1.emitCalls)
	assert.Equal(t, 0, e2.emitCalls) // Should stop on first error
}

func TestMultiEmitter_Close(t *testing.T) {
	e1 := &mockEmitter{}
	e2 := &mockEmitter{}
	multi := NewMultiEmitter(e1, e2)

	err := multi.Close()

	require.NoError(t, err)
	assert.Equal(t, 1, e1.closeCalls)
	assert.Equal(t, 1, e2.closeCalls)
}

func TestMultiEmitter_Close_Error(t *testing.T) {
	e1 := &mockEmitter{closeErr: errors.New("close failed")}
	e2 := &mockEmitter{}
	multi := NewMultiEmitter(e1, e2)

	err := multi.Close()

	assert.Error(t, err)
	assert.Equal(t, 1, e1.closeCalls)
	assert.Equal(t, 0, e2.closeCalls) // Should stop on first error
}

func TestMultiEmitter_Empty(t *testing.T) {
	multi := NewMultiEmitter()

	err := multi.Emit(context.Background(), Batch{})
	require.NoError(t, err)

	err = multi.Close()
	require.NoError(t, err)
}

func TestNDJSONEmitter_WireShape(t *testing.T) {
	var buf bytes.Buffer
	e := NewNDJSONEmitter(&buf)

	require.NoError(t, e.Emit(context.Background(), instanceBatch()))
	require.NoError(t, e.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "AWS::EC2::Instance", first["Type"])
	assert.Equal(t, "123456789012", first["__AccountId"])
	assert.Equal(t, "us-east-1", first["__Region"])

	props, ok := first["Properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "i-123", props["InstanceId"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	secondProps := second["Properties"].(map[string]any)
	assert.Equal(t, "i-456", secondProps["InstanceId"])
}

func TestNDJSONEmitter_CanceledContext(t *testing.T) {
	var buf bytes.Buffer
	e := NewNDJSONEmitter(&buf)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Emit(ctx, instanceBatch())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirEmitter_OneFilePerKind(t *testing.T) {
	dir := t.TempDir()
	e, err := NewDirEmitter(dir)
	require.NoError(t, err)

	require.NoError(t, e.Emit(context.Background(), instanceBatch()))
	require.NoError(t, e.Emit(context.Background(), Batch{
		Kind: "AWS::S3::Bucket",
		Docs: []types.Document{{
			Type:       "AWS::S3::Bucket",
			Properties: map[string]any{"Name": "logs"},
			AccountID:  "123456789012",
			Region:     "us-east-1",
		}},
	}))
	require.NoError(t, e.Close())

	instances, err := os.ReadFile(filepath.Join(dir, "aws-ec2-instance.ndjson"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(instances)), "\n"), 2)

	buckets, err := os.ReadFile(filepath.Join(dir, "aws-s3-bucket.ndjson"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(buckets)), "\n"), 1)
}

func TestDirEmitter_AppendsAcrossBatches(t *testing.T) {
	dir := t.TempDir()
	e, err := NewDirEmitter(dir)
	require.NoError(t, err)

	require.NoError(t, e.Emit(context.Background(), instanceBatch()))
	require.NoError(t, e.Emit(context.Background(), instanceBatch()))
	require.NoError(t, e.Close())

	data, err := os.ReadFile(filepath.Join(dir, "aws-ec2-instance.ndjson"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 4)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{"AWS::EC2::Instance", "aws-ec2-instance.ndjson"},
		{"AWS::ElasticLoadBalancingV2::LoadBalancer", "aws-elasticloadbalancingv2-loadbalancer.ndjson"},
		{"AWS::S3::Bucket", "aws-s3-bucket.ndjson"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, fileName(tt.kind))
	}
}

func TestMetricsEmitter_Emit(t *testing.T) {
	e, err := NewMetricsEmitter()
	require.NoError(t, err)

	// The global meter is a no-op without a provider; Emit must still
	// account every document without error.
	require.NoError(t, e.Emit(context.Background(), instanceBatch()))
	require.NoError(t, e.Close())
}
