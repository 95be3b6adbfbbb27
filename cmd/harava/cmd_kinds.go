package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yairfalse/harava/config"
	"github.com/yairfalse/harava/kinds"
)

var kindsConfig string

// kindsCmd represents the kinds command
var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the exportable resource kinds",
	Long: `List every kind in the catalog with its default and opt-in
enrichment actions. Defaults always run; opt-in actions run when the
config's export.include names them for the kind.

With a config file, extra cloud control types from
export.cloud_control_types appear in the listing too.`,
	RunE: runKinds,
}

func init() {
	rootCmd.AddCommand(kindsCmd)

	kindsCmd.Flags().StringVarP(&kindsConfig, "config", "c", "", "Config file path (optional)")
}

func runKinds(cmd *cobra.Command, args []string) error {
	var extra []string
	if kindsConfig != "" {
		cfg, err := config.LoadConfig(kindsConfig)
		if err != nil {
			return err
		}
		extra = cfg.Export.CloudControlTypes
	}

	catalog := kinds.DefaultRegistry(extra...)
	fmt.Printf("%d kind(s) registered\n\n", catalog.Len())

	catalog.Ascend(func(k kinds.Kind) bool {
		scope := "regional"
		if k.Global() {
			scope = "global"
		}
		fmt.Printf("  %s (%s)\n", k.Type(), scope)

		actions := k.Actions()
		if actions == nil {
			return true
		}
		if defaults := actions.DefaultNames(); len(defaults) > 0 {
			fmt.Printf("      defaults: %s\n", strings.Join(defaults, ", "))
		}
		if options := actions.OptionNames(); len(options) > 0 {
			fmt.Printf("      options:  %s\n", strings.Join(options, ", "))
		}
		return true
	})

	return nil
}
