package kinds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/yairfalse/harava/action"
)

type rdsInstances struct{}

// RDSInstances exports AWS::RDS::DBInstance. DescribeDBInstances returns
// the full instance including its tag list, so no second call is needed.
func RDSInstances() Kind { return rdsInstances{} }

func (rdsInstances) Type() string         { return "AWS::RDS::DBInstance" }
func (rdsInstances) Global() bool         { return false }
func (rdsInstances) Actions() *action.Map { return action.NewMap() }

func (k rdsInstances) Resync(ctx context.Context, sc Scope, emit EmitFunc) error {
	p := rds.NewDescribeDBInstancesPaginator(sc.Clients.RDS, &rds.DescribeDBInstancesInput{})
	fetch := func(ctx context.Context) ([]rdstypes.DBInstance, bool, error) {
		if !p.HasMorePages() {
			return nil, false, nil
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, false, err
		}
		return page.DBInstances, p.HasMorePages(), nil
	}
	pager := newPager(k.Type(), sc, 0, fetch)
	return itemResync(ctx, k.Type(), sc, pager, nil, nil, emit)
}
