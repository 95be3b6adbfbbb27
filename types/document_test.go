package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentWireShape(t *testing.T) {
	doc := Document{
		Type:       "AWS::ECR::Repository",
		Properties: map[string]any{"repositoryName": "api"},
		AccountID:  "123456789012",
		Region:     "eu-west-1",
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "AWS::ECR::Repository", raw["Type"])
	assert.Equal(t, "123456789012", raw["__AccountId"])
	assert.Equal(t, "eu-west-1", raw["__Region"])

	props, ok := raw["Properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "api", props["repositoryName"])
}

func TestDocumentTypeSegments(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		service  string
		resource string
	}{
		{"full type", "AWS::ECR::Repository", "ECR", "Repository"},
		{"two segments", "AWS::S3", "S3", ""},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Document{Type: tt.typeName}
			assert.Equal(t, tt.service, doc.Service())
			assert.Equal(t, tt.resource, doc.Resource())
		})
	}
}
