package commands

import (
	"fmt"

	"github.com/RepreZen/SwagEdit/internal/console"
	"github.com/RepreZen/SwagEdit/validation"
	"github.com/spf13/cobra"
)

func newRulesCommand() *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List the validation rules",
		Long: `List the rules that diagnostics are reported under.

Rule ids are used by the rules section of the configuration to disable a rule
or change its severity. Pass a rule id to print its full documentation.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			f := console.NewFormatter(out)

			if len(args) == 1 {
				info, ok := validation.RuleInfoForID(args[0])
				if !ok {
					return fmt.Errorf("unknown rule %q", args[0])
				}
				fmt.Fprint(out, f.FormatRule(args[0], info, true))
				return nil
			}

			for _, id := range validation.Rules() {
				info, _ := validation.RuleInfoForID(id)
				fmt.Fprint(out, f.FormatRule(id, info, detailed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&detailed, "details", false, "print the description and fix of every rule")

	return cmd
}
