// Package policy screens documents before emission with Rego policies.
//
// A filter is optional. Without one, every document is admitted. With
// one, each document is evaluated against data.harava.export and dropped
// when the policy denies it. Denial is a policy outcome, not an error.
package policy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/open-policy-agent/opa/v1/rego"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yairfalse/harava/telemetry"
	"github.com/yairfalse/harava/types"
)

// Input is the document view a policy evaluates.
type Input struct {
	Type       string         `json:"type"`
	AccountID  string         `json:"account_id"`
	Region     string         `json:"region"`
	Properties map[string]any `json:"properties"`
}

// Verdict is one admission decision.
type Verdict struct {
	Allow  bool
	Reason string
}

// Filter evaluates export documents against a compiled Rego policy.
type Filter struct {
	logger *telemetry.Logger
	tracer trace.Tracer
	query  rego.PreparedEvalQuery
	loaded bool
}

// NewFilter creates a filter that admits everything until a policy is
// loaded.
func NewFilter() *Filter {
	return &Filter{
		logger: telemetry.NewLogger("policy-filter"),
		tracer: otel.Tracer("policy-filter"),
	}
}

// Loaded reports whether a policy has been compiled into the filter.
func (f *Filter) Loaded() bool { return f.loaded }

// Load compiles a Rego module querying data.harava.export.
func (f *Filter) Load(ctx context.Context, name string, regoSrc string) error {
	ctx, span := f.tracer.Start(ctx, "policy_filter.load",
		trace.WithAttributes(attribute.String("policy.name", name)))
	defer span.End()

	query := rego.New(
		rego.Query("data.harava.export"),
		rego.Module(name, regoSrc),
	)

	prepared, err := query.PrepareForEval(ctx)
	if err != nil {
		return fmt.Errorf("failed to compile policy %s: %w", name, err)
	}

	f.query = prepared
	f.loaded = true

	f.logger.WithContext(ctx).Info().
		Str("policy_name", name).
		Msg("export filter loaded")

	return nil
}

// LoadFile compiles a .rego file, named after its base name.
func (f *Filter) LoadFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read policy file %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), ".rego")
	return f.Load(ctx, name, string(content))
}

// Admit evaluates one document. With no policy loaded every document is
// admitted. The policy document may set "allow" or "deny" booleans and
// an optional "reason" string; deny wins over allow.
func (f *Filter) Admit(ctx context.Context, doc types.Document) (Verdict, error) {
	if !f.loaded {
		return Verdict{Allow: true}, nil
	}

	ctx, span := f.tracer.Start(ctx, "policy_filter.admit",
		trace.WithAttributes(
			attribute.String("document.type", doc.Type),
			attribute.String("document.account_id", doc.AccountID)))
	defer span.End()

	input := Input{
		Type:       doc.Type,
		AccountID:  doc.AccountID,
		Region:     doc.Region,
		Properties: doc.Properties,
	}

	results, err := f.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to evaluate export filter: %w", err)
	}

	verdict := Verdict{Allow: true}
	for _, res := range results {
		for _, expr := range res.Expressions {
			value, ok := expr.Value.(map[string]interface{})
			if !ok {
				continue
			}
			if allow, ok := value["allow"].(bool); ok {
				verdict.Allow = allow
			}
			if deny, ok := value["deny"].(bool); ok && deny {
				verdict.Allow = false
			}
			if reason, ok := value["reason"].(string); ok {
				verdict.Reason = reason
			}
		}
	}

	if !verdict.Allow {
		f.logger.WithContext(ctx).Debug().
			Str("document_type", doc.Type).
			Str("account_id", doc.AccountID).
			Str("region", doc.Region).
			Str("reason", verdict.Reason).
			Msg("document denied by export filter")
	}

	return verdict, nil
}
