package kinds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"

	"github.com/yairfalse/harava/action"
)

type route53HostedZones struct{}

// Route53HostedZones exports AWS::Route53::HostedZone.
func Route53HostedZones() Kind { return route53HostedZones{} }

func (route53HostedZones) Type() string { return "AWS::Route53::HostedZone" }
func (route53HostedZones) Global() bool { return true }

func (k route53HostedZones) Actions() *action.Map { return k.actions(Scope{Clients: noClients}) }

func (k route53HostedZones) actions(sc Scope) *action.Map {
	client := sc.Clients.Route53
	return action.NewMap(
		action.Single("Describe", func(ctx context.Context, zoneID string) (action.Result, error) {
			out, err := client.GetHostedZone(ctx, &route53.GetHostedZoneInput{
				Id: aws.String(zoneID),
			})
			if err != nil {
				return nil, err
			}
			res, err := toResult(out.HostedZone)
			if err != nil {
				return nil, err
			}
			if out.DelegationSet != nil {
				res["DelegationSet"] = out.DelegationSet
			}
			if len(out.VPCs) > 0 {
				res["VPCs"] = out.VPCs
			}
			return res, nil
		}),
	)
}

func (k route53HostedZones) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	p := route53.NewListHostedZonesPaginator(sc.Clients.Route53, &route53.ListHostedZonesInput{})
	fetch := func(ctx context.Context) ([]string, bool, error) {
		if !p.HasMorePages() {
			return nil, false, nil
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, false, err
		}
		ids := make([]string, 0, len(page.HostedZones))
		for _, zone := range page.HostedZones {
			ids = append(ids, aws.ToString(zone.Id))
		}
		return ids, p.HasMorePages(), nil
	}
	pager := newPager(k.Type(), sc, 0, fetch)
	return singleResync(ctx, k.Type(), sc, pager, k.actions(sc), emit)
}
