package kinds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/yairfalse/harava/action"
)

type iamRoles struct{}

// IAMRoles exports AWS::IAM::Role. The default describe re-reads each
// role because ListRoles omits tags, the permissions boundary, and the
// last-used timestamp.
func IAMRoles() Kind { return iamRoles{} }

func (iamRoles) Type() string { return "AWS::IAM::Role" }
func (iamRoles) Global() bool { return true }

func (k iamRoles) Actions() *action.Map { return k.actions(Scope{Clients: noClients}) }

func (k iamRoles) actions(sc Scope) *action.Map {
	client := sc.Clients.IAM
	return action.NewMap(
		action.Single("Describe", func(ctx context.Context, name string) (action.Result, error) {
			out, err := client.GetRole(ctx, &iam.GetRoleInput{
				RoleName: aws.String(name),
			})
			if err != nil {
				return nil, err
			}
			return toResult(out.Role)
		}),
	).WithOptions(
		action.Single("InstanceProfiles", func(ctx context.Context, name string) (action.Result, error) {
			out, err := client.ListInstanceProfilesForRole(ctx, &iam.ListInstanceProfilesForRoleInput{
				RoleName: aws.String(name),
			})
			if err != nil {
				return nil, err
			}
			return action.Result{"InstanceProfiles": out.InstanceProfiles}, nil
		}),
	)
}

func (k iamRoles) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	p := iam.NewListRolesPaginator(sc.Clients.IAM, &iam.ListRolesInput{})
	fetch := func(ctx context.Context) ([]string, bool, error) {
		if !p.HasMorePages() {
			return nil, false, nil
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, false, err
		}
		names := make([]string, 0, len(page.Roles))
		for _, role := range page.Roles {
			names = append(names, aws.ToString(role.RoleName))
		}
		return names, p.HasMorePages(), nil
	}
	pager := newPager(k.Type(), sc, 0, fetch)
	return singleResync(ctx, k.Type(), sc, pager, k.actions(sc), emit)
}
