package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yairfalse/harava/awsapi"
	"github.com/yairfalse/harava/config"
	"github.com/yairfalse/harava/regions"
)

var regionsConfig string

// regionsCmd represents the regions command
var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Show the regions each account would be exported from",
	Long: `Resolve the enabled regions per healthy account and apply the
configured allow and deny lists. The result is exactly the region set
an export run would walk. An empty result is valid.`,
	RunE: runRegions,
}

func init() {
	rootCmd.AddCommand(regionsCmd)

	regionsCmd.Flags().StringVarP(&regionsConfig, "config", "c", "harava.yaml", "Config file path")
}

func runRegions(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(regionsConfig)
	if err != nil {
		return err
	}

	ctx := context.Background()
	strategy, err := buildStrategy(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build session strategy: %w", err)
	}

	sessions, err := strategy.Sessions(ctx)
	if err != nil {
		return err
	}

	resolver := regions.NewResolver()
	policy := regions.Policy{Allow: cfg.Regions.Allow, Deny: cfg.Regions.Deny}

	for _, sess := range sessions {
		clients := awsapi.NewRegistry(sess.Config(cfg.Account.Region))
		allowed, err := resolver.Allowed(ctx, clients.Account, sess.Account.ID, policy)
		if err != nil {
			fmt.Printf("⚠️  %s: %v\n", sess.Account.ID, err)
			continue
		}
		if len(allowed) == 0 {
			fmt.Printf("🌍 %s: no regions selected\n", sess.Account.ID)
			continue
		}
		fmt.Printf("🌍 %s: %s\n", sess.Account.ID, strings.Join(allowed, ", "))
	}

	return nil
}
