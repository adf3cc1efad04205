package cli

import (
	"fmt"
	"os"

	"github.com/andrewimm/clancy/internal/config"
	"github.com/andrewimm/clancy/internal/launch"
	"github.com/andrewimm/clancy/internal/tasklog"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check clancy installation health",
	Long:  `Runs diagnostic checks on the clancy installation and reports pass/fail for each component.`,
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	passed := 0
	failed := 0

	check := func(name string, ok bool, detail string) {
		if ok {
			fmt.Fprintf(out, "  %s %s\n", okStyle.Render("✓"), name)
			passed++
		} else {
			fmt.Fprintf(out, "  %s %s (%s)\n", errorStyle.Render("✗"), name, detail)
			failed++
		}
	}

	fmt.Fprintln(out, "Configuration:")
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		check("config readable", false, cfgErr.Error())
		cfg = config.DefaultConfig()
	} else {
		check("config readable", true, "")
	}
	check("global config file", exists(config.GlobalConfigPath()), "optional; run: clancy config init")

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Data:")
	check("clancy home "+config.Home(), exists(config.Home()), "created on first 'clancy start'")
	x, err := tasklog.OpenIndex(config.IndexPath())
	if err == nil {
		x.Close()
	}
	check("task index", err == nil, fmt.Sprint(err))

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Claude Code:")
	check(cfg.Runner.Command+" binary", launch.CheckInstalled(cfg.Runner.Command) == nil, "install Claude Code CLI")

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Note extraction:")
	if !cfg.Extraction.Enabled {
		fmt.Fprintln(out, "  → disabled (extraction.enabled: false)")
	} else {
		check("$"+cfg.Claude.APIKeyEnv+" set", os.Getenv(cfg.Claude.APIKeyEnv) != "", "export "+cfg.Claude.APIKeyEnv)
		fmt.Fprintf(out, "  → model: %s\n", cfg.Claude.Model)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Results: %d passed, %d failed\n", passed, failed)
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
