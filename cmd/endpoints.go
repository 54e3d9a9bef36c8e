package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/velotools/velocheck/internal/config"
	"github.com/velotools/velocheck/internal/report"
)

var endpointsSchemaDir string

var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List the registered endpoints",
	Long: `Shows every endpoint a run would probe, in probe order. The set depends
on the configuration: edge-scoped endpoints appear only when VCO_EDGE_ID is
set.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return listEndpoints()
	},
}

func init() {
	rootCmd.AddCommand(endpointsCmd)

	endpointsCmd.Flags().StringVar(&endpointsSchemaDir, "schema-dir", "", "Directory of extra endpoint definitions (YAML)")
}

func listEndpoints() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	registry, err := buildRegistry(newLogger(false), cfg, endpointsSchemaDir)
	if err != nil {
		return err
	}

	endpoints := registry.Endpoints()

	headers := []string{"Name", "Method", "Payload", "Description"}
	rows := make([][]string, 0, len(endpoints))

	for _, ep := range endpoints {
		payload := "object"
		if ep.List {
			payload = "list"
		}

		rows = append(rows, []string{ep.Name, ep.Method, payload, ep.Description})
	}

	fmt.Println(report.TableString(headers, rows))

	return nil
}
