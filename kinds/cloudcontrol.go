package kinds

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudcontrol"
	cloudcontroltypes "github.com/aws/aws-sdk-go-v2/service/cloudcontrol/types"

	"github.com/yairfalse/harava/action"
	"github.com/yairfalse/harava/awsapi"
	"github.com/yairfalse/harava/resync"
	"github.com/yairfalse/harava/types"
)

type cloudControlKind struct {
	typeName string
}

// CloudControl exports any resource type the Cloud Control API supports,
// for kinds the built-in catalog does not cover. Listing sometimes
// returns the full resource model; when it does not, each resource is
// re-read with GetResource.
func CloudControl(typeName string) Kind {
	return cloudControlKind{typeName: typeName}
}

func (k cloudControlKind) Type() string         { return k.typeName }
func (k cloudControlKind) Global() bool         { return false }
func (k cloudControlKind) Actions() *action.Map { return action.NewMap() }

func (k cloudControlKind) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	client := sc.Clients.CloudControl
	p := cloudcontrol.NewListResourcesPaginator(client, &cloudcontrol.ListResourcesInput{
		TypeName: aws.String(k.typeName),
	})
	fetch := func(ctx context.Context) ([]cloudcontroltypes.ResourceDescription, bool, error) {
		if !p.HasMorePages() {
			return nil, false, nil
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, false, err
		}
		return page.ResourceDescriptions, p.HasMorePages(), nil
	}

	h := &resync.Handler[cloudcontroltypes.ResourceDescription]{
		Kind:  k.typeName,
		Pager: newPager(k.Type(), sc, 0, fetch),
		Retry: sc.Retry,
		Log:   sc.Log,
		Materialize: func(ctx context.Context, desc cloudcontroltypes.ResourceDescription) (types.Document, error) {
			props, err := k.properties(ctx, client, desc)
			if err != nil {
				return types.Document{}, err
			}
			return document(k.typeName, sc, []action.Result{props}), nil
		},
	}
	_, err := h.Run(ctx, emit)
	return err
}

// properties decodes the resource model, re-reading the resource when
// the listing omitted it.
func (k cloudControlKind) properties(ctx context.Context, client awsapi.CloudControlAPI, desc cloudcontroltypes.ResourceDescription) (action.Result, error) {
	model := aws.ToString(desc.Properties)
	if model == "" {
		out, err := client.GetResource(ctx, &cloudcontrol.GetResourceInput{
			TypeName:   aws.String(k.typeName),
			Identifier: desc.Identifier,
		})
		if err != nil {
			return nil, err
		}
		if out.ResourceDescription != nil {
			model = aws.ToString(out.ResourceDescription.Properties)
		}
	}

	props := action.Result{}
	if model != "" {
		if err := json.Unmarshal([]byte(model), &props); err != nil {
			return nil, fmt.Errorf("decode resource model for %s: %w", aws.ToString(desc.Identifier), err)
		}
	}
	if _, ok := props["Identifier"]; !ok {
		props["Identifier"] = aws.ToString(desc.Identifier)
	}
	return props, nil
}
