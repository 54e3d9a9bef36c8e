package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/velotools/velocheck/internal/config"
	"github.com/velotools/velocheck/internal/interactive"
	"github.com/velotools/velocheck/internal/report"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Launch interactive TUI mode",
	Long:  `Launches the interactive Terminal User Interface for velocheck.`,
	Run: func(_ *cobra.Command, _ []string) {
		RunInteractive()
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

// RunInteractive drives the menu-based TUI. Starting velocheck without
// arguments lands here too.
func RunInteractive() {
	fmt.Println("Velocheck - Interactive Mode")
	fmt.Println("===========================")
	fmt.Println()

	for {
		options := []interactive.MenuOption{
			{
				Name:        "Probe Endpoints",
				Description: "Fetch endpoints and validate their payloads",
				Action:      runProbesInteractive,
			},
			{
				Name:        "List Endpoints",
				Description: "Show every endpoint a run would probe",
				Action: func() error {
					if err := listEndpoints(); err != nil {
						fmt.Printf("\n❌ Error: %v\n", err)
					}
					interactive.PauseForEnter()
					return nil
				},
			},
			{
				Name:        "Show Config",
				Description: "Display current environment configuration",
				Action: func() error {
					if err := showConfig(); err != nil {
						fmt.Printf("\n❌ Error: %v\n", err)
					}
					interactive.PauseForEnter()
					return nil
				},
			},
		}

		if err := interactive.ShowMainMenu(options); err != nil {
			if errors.Is(err, interactive.ErrExit) {
				fmt.Println("Goodbye!")
				return
			}
			log.Fatal(err)
		}

		fmt.Println()
	}
}

func runProbesInteractive() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("\n❌ Error: %v\n", err)
		interactive.PauseForEnter()
		return nil
	}

	registry, err := buildRegistry(Logger, cfg, "")
	if err != nil {
		fmt.Printf("\n❌ Error: %v\n", err)
		interactive.PauseForEnter()
		return nil
	}

	names, err := interactive.MultiSelectFromList("Select endpoints to probe (none for all):", registry.Names())
	if err != nil {
		fmt.Println("Selection canceled.")
		interactive.PauseForEnter()
		return nil
	}

	cfg.StrictFields = cfg.StrictFields || interactive.Confirm("Enable strict field checking?")

	sinks := report.Multi{report.NewConsole(Logger, os.Stdout, false)}

	if interactive.Confirm("Append this run to the local history database?") {
		history, err := report.NewHistory(Logger, config.DefaultHistoryPath)
		if err != nil {
			fmt.Printf("\n❌ Error: %v\n", err)
			interactive.PauseForEnter()

			return nil
		}
		defer func() { _ = history.Close() }()

		sinks = append(sinks, history)
	}

	if err := executeRun(Logger, cfg, names, sinks); err != nil {
		fmt.Printf("\n❌ %v\n", err)
	}

	interactive.PauseForEnter()

	return nil
}
