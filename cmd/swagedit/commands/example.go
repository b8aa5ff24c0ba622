package commands

import (
	"fmt"
	"strings"

	"github.com/RepreZen/SwagEdit/dialects"
	"github.com/RepreZen/SwagEdit/document"
	"github.com/RepreZen/SwagEdit/jsonpointer"
	"github.com/RepreZen/SwagEdit/openapi3"
	"github.com/spf13/cobra"
)

func newExampleCommand(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "example <file> <pointer>",
		Short: "Generate an example value for an OpenAPI 3.0 example location",
		Long: `Generate an example value from the schema governing an example location of an OpenAPI 3.0 document.

The pointer is a JSON pointer, with or without a leading '#':
  swagedit example api.yaml '#/paths/~1pets/get/responses/200/content/application~1json/example'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, global)
			if err != nil {
				return err
			}

			source, err := env.read(args[0])
			if err != nil {
				return err
			}
			doc := dialects.Parse(args[0], source)
			if pe := doc.ParseError(); pe != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], pe)
			}
			if doc.Version() != document.VersionOpenAPI3 {
				return fmt.Errorf("%s is not an OpenAPI 3.0 document", args[0])
			}
			m, err := doc.Model()
			if err != nil {
				return err
			}

			pointer, err := jsonpointer.FromFragment(strings.TrimPrefix(args[1], "#"))
			if err != nil {
				return fmt.Errorf("invalid pointer %q: %w", args[1], err)
			}

			example, err := openapi3.GenerateExampleJSON(m, pointer)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), example)
			return nil
		},
	}
}
