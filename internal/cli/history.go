package cli

import (
	"fmt"
	"strings"

	"github.com/andrewimm/clancy/internal/config"
	"github.com/andrewimm/clancy/internal/tasklog"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <project>",
	Short: "List a project's recent tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 10, "Number of tasks to show")
	historyCmd.Flags().String("grep", "", "Only show tasks whose prompt or summary contains this text")
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	grep, _ := cmd.Flags().GetString("grep")

	a, err := loadApp()
	if err != nil {
		return err
	}
	p, err := a.manager.Open(args[0])
	if err != nil {
		return err
	}

	x, err := tasklog.OpenIndex(config.IndexPath())
	if err != nil {
		return err
	}
	defer x.Close()

	var records []tasklog.Record
	if grep != "" {
		records, err = x.Search(p.Metadata.Name, grep, limit)
	} else {
		records, err = x.Recent(p.Metadata.Name, limit)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No task history found.")
		return nil
	}

	fmt.Fprintf(out, "Recent Tasks (%d):\n\n", len(records))
	for _, r := range records {
		result := okStyle.Render("ok")
		if !r.Success {
			result = errorStyle.Render("failed")
		}
		fmt.Fprintf(out, "  %03d  %s  %s  %s\n",
			r.TaskNumber, formatTime(r.Timestamp), result, firstLine(r.Prompt, 60))
		if r.Summary != "" {
			fmt.Fprintf(out, "       %s\n", dimStyle.Render(firstLine(r.Summary, 72)))
		}
	}
	return nil
}

// firstLine returns the first line of s cut to n runes.
func firstLine(s string, n int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	runes := []rune(line)
	if len(runes) > n {
		return string(runes[:n-3]) + "..."
	}
	return line
}
