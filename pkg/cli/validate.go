package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mike10004/har-replay-proxy/pkg/har"
	"github.com/mike10004/har-replay-proxy/pkg/rules"
)

var validateConfigFile string

var validateCmd = &cobra.Command{
	Use:   "validate <trace.har>",
	Short: "Validate a trace and configuration without serving",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(args[0], validateConfigFile)
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateConfigFile, "config", "c", "", "Path to replay configuration file")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(tracePath, configFile string) error {
	entries, err := har.LoadEntriesFromFile(tracePath)
	if err != nil {
		return fmt.Errorf("trace: %w", err)
	}

	unusable := 0
	for _, e := range entries {
		if !e.Usable() {
			unusable++
		}
	}

	compiled, err := rules.LoadAndCompile(configFile)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	fmt.Printf("trace OK: %d entries (%d unusable captures)\n", len(entries), unusable)
	fmt.Printf("configuration OK: %d mappings, %d replacements, %d header transforms\n",
		len(compiled.Mappings), len(compiled.Replacements), len(compiled.HeaderTransforms))
	return nil
}
