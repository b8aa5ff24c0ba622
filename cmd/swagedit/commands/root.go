// Package commands implements the swagedit command line.
package commands

import (
	"fmt"
	"strings"

	"github.com/RepreZen/SwagEdit/errors"
	"github.com/spf13/cobra"
)

// ErrValidationFailed is returned when a validated document has error diagnostics. The diagnostics
// have already been printed.
const ErrValidationFailed = errors.Error("validation failed")

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type globalFlags struct {
	verbose    bool
	configPath string
}

// NewRootCommand creates the swagedit command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "swagedit",
		Short: "Validate Swagger 2.0 and OpenAPI 3.0 documents",
		Long: `Validate Swagger 2.0 and OpenAPI 3.0 documents written in YAML or JSON.

Documents are checked against the JSON schema of their format, then for
structural problems the schema cannot express: schema definitions without
types, arrays without items, required properties that are not declared,
duplicate keys and references that cannot be resolved or point to the
wrong kind of object.

CONFIGURATION:

By default swagedit looks for .swagedit.yaml, .swagedit.yml or .swagedit.toml
in the working directory. Use --config to specify another file.

  preferences:
    swagger.references.simple: false
    references.timeout: 2000
  rules:
    - id: validation-type-missing
      enabled: false
    - id: validation-duplicate-key
      severity: error
  ignore:
    - "$.paths['/internal']"
  providers:
    paths: ["./rules/*.ts"]`,
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var versionTemplate strings.Builder
	versionTemplate.WriteString(`{{printf "%s" .Version}}`)
	if info.Commit != "" && info.Commit != "none" {
		versionTemplate.WriteString("\nBuild: " + info.Commit)
	}
	if info.Date != "" && info.Date != "unknown" {
		versionTemplate.WriteString("\nBuilt: " + info.Date)
	}
	root.SetVersionTemplate(versionTemplate.String() + "\n")

	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a configuration file")

	root.AddCommand(
		newValidateCommand(flags),
		newWatchCommand(flags),
		newExampleCommand(flags),
		newRulesCommand(),
		newVersionCommand(info),
	)

	return root
}

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "swagedit %s\n", info.Version)
			if info.Commit != "" && info.Commit != "none" {
				fmt.Fprintf(out, "Build: %s\n", info.Commit)
			}
			if info.Date != "" && info.Date != "unknown" {
				fmt.Fprintf(out, "Built: %s\n", info.Date)
			}
		},
	}
}
