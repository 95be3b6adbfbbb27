package types

import "strings"

// Reserved metadata keys stamped onto every exported document.
const (
	MetadataAccountID = "__AccountId"
	MetadataRegion    = "__Region"
)

// Document is one exported cloud resource in wire form.
// Type names follow <Provider>::<Service>::<Resource>, e.g. AWS::ECR::Repository.
type Document struct {
	Type       string         `json:"Type"`
	Properties map[string]any `json:"Properties"`
	AccountID  string         `json:"__AccountId"`
	Region     string         `json:"__Region"`
}

// Service returns the service segment of the type name.
func (d Document) Service() string {
	parts := strings.Split(d.Type, "::")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// Resource returns the resource segment of the type name.
func (d Document) Resource() string {
	parts := strings.Split(d.Type, "::")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}
