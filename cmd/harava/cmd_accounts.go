package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yairfalse/harava/config"
	"github.com/yairfalse/harava/session"
	"github.com/yairfalse/harava/types"
)

var (
	accountsConfig string
	accountsOutput string
)

// accountsCmd represents the accounts command
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Probe credentials and list healthy accounts",
	Long: `Probe every configured account once with sts:GetCallerIdentity and
list the accounts that passed. In roles mode, accounts whose probe
failed are listed with the probe error; the command fails only when
no account passed.`,
	Example: `  harava accounts                     # Probe accounts from harava.yaml
  harava accounts --output json       # Machine-readable listing`,
	RunE: runAccounts,
}

func init() {
	rootCmd.AddCommand(accountsCmd)

	accountsCmd.Flags().StringVarP(&accountsConfig, "config", "c", "harava.yaml", "Config file path")
	accountsCmd.Flags().StringVarP(&accountsOutput, "output", "o", "table", "Output format: table, json")
}

func runAccounts(cmd *cobra.Command, args []string) error {
	if accountsOutput != "table" && accountsOutput != "json" {
		return fmt.Errorf("invalid output format: %s (must be table or json)", accountsOutput)
	}

	cfg, err := config.LoadConfig(accountsConfig)
	if err != nil {
		return err
	}

	ctx := context.Background()
	strategy, err := buildStrategy(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build session strategy: %w", err)
	}

	if err := strategy.Healthcheck(ctx); err != nil {
		return fmt.Errorf("credential probe failed: %w", err)
	}

	sessions, err := strategy.Sessions(ctx)
	if err != nil {
		return err
	}

	accounts := make([]types.AccountInfo, 0, len(sessions))
	for _, s := range sessions {
		accounts = append(accounts, s.Account)
	}

	if accountsOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(accounts)
	}

	fmt.Printf("✅ %d account(s) passed the credential probe\n\n", len(accounts))
	for _, a := range accounts {
		fmt.Printf("  %s  %s\n", a.ID, a.ARN)
	}

	if m, ok := strategy.(*session.Multi); ok {
		failed := m.Failed()
		if len(failed) > 0 {
			fmt.Printf("\n⚠️  %d probe(s) failed:\n", len(failed))
			for roleARN, probeErr := range failed {
				fmt.Printf("  - %s: %v\n", roleARN, probeErr)
			}
		}
	}

	return nil
}
