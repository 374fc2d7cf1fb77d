package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the opensearch-apigen CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "opensearch-apigen",
		Short: "Generate the Go client for the OpenSearch REST API",
		Long: "opensearch-apigen reads the OpenSearch REST API description and generates " +
			"typed URL parts and request builders for every endpoint.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	cmd.SetFlagErrorFunc(flagError)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or TOML)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")
	cmd.PersistentFlags().String("log-format", logFormatText, "Log output format (text|json)")

	for _, sub := range []*cobra.Command{newGenerateCmd(), newInitCmd(), newResolveCmd()} {
		sub.SetFlagErrorFunc(flagError)
		cmd.AddCommand(sub)
	}

	return cmd
}

func flagError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}
