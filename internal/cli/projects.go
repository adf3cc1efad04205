package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/andrewimm/clancy/internal/launch"
	"github.com/andrewimm/clancy/internal/notes"
	"github.com/andrewimm/clancy/internal/project"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04"

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var statusCmd = &cobra.Command{
	Use:   "status <project>",
	Short: "Show project status and notes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

var notesCmd = &cobra.Command{
	Use:   "notes <project> [category]",
	Short: "View or edit a project's notes",
	Long: `Opens the project's notes in your editor: one category file when a category
is given, otherwise the notes directory. With --print the notes are written
to stdout instead.

Categories: ` + notes.CategoryNames(),
	Args: cobra.RangeArgs(1, 2),
	RunE: runNotes,
}

var archiveCmd = &cobra.Command{
	Use:   "archive <project>",
	Short: "Archive a completed project",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchive,
}

var linkCmd = &cobra.Command{
	Use:   "link <child> <parent>",
	Short: "Let a project inherit another project's architecture notes",
	Args:  cobra.ExactArgs(2),
	RunE:  runLink,
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink <project>",
	Short: "Remove a project's parent link",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnlink,
}

func init() {
	notesCmd.Flags().Bool("print", false, "Print notes instead of opening an editor")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	projects, err := a.manager.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects found.")
		return nil
	}

	fmt.Fprintln(out, "Projects:")
	fmt.Fprintln(out)
	for _, p := range projects {
		marker := ""
		if p.Metadata.Archived() {
			marker = " (archived)"
		}
		fmt.Fprintf(out, "  %s%s - %d sessions, %d tasks\n",
			p.Metadata.Name, marker, p.Metadata.Stats.TotalSessions, p.Metadata.Stats.TotalTasks)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("Project name required")
	}
	a, err := loadApp()
	if err != nil {
		return err
	}
	p, err := a.manager.Open(args[0])
	if err != nil {
		return err
	}
	return printStatus(cmd.OutOrStdout(), p)
}

func printStatus(out io.Writer, p *project.Project) error {
	m := p.Metadata
	fmt.Fprintf(out, "Project: %s\n", m.Name)
	fmt.Fprintf(out, "Status: %s\n", m.Status)
	fmt.Fprintf(out, "Created: %s\n", m.Created.UTC().Format(timeLayout))
	if m.LastTask != nil {
		fmt.Fprintf(out, "Last task: %s\n", m.LastTask.UTC().Format(timeLayout))
	}
	if m.Parent != "" {
		fmt.Fprintf(out, "Parent: %s\n", m.Parent)
	}
	fmt.Fprintf(out, "Stats: %d sessions, %d tasks\n", m.Stats.TotalSessions, m.Stats.TotalTasks)

	store := p.Notes()
	plan, err := store.Read(notes.Plan)
	if err != nil {
		return err
	}
	if strings.TrimSpace(plan) != "" {
		fmt.Fprintf(out, "\n## Current Plan\n\n%s\n", plan)
	}

	decisions, err := store.Read(notes.Decisions)
	if err != nil {
		return err
	}
	if strings.TrimSpace(decisions) != "" {
		fmt.Fprintf(out, "\n## Recent Decisions\n\n")
		for _, line := range lastLines(decisions, 5) {
			fmt.Fprintln(out, line)
		}
	}
	return nil
}

// lastLines returns up to n trailing lines of s, ignoring a final newline.
func lastLines(s string, n int) []string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

func runNotes(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	p, err := a.manager.Open(args[0])
	if err != nil {
		return err
	}
	category := ""
	if len(args) > 1 {
		category = args[1]
	}

	if printOnly, _ := cmd.Flags().GetBool("print"); printOnly {
		return printNotes(cmd.OutOrStdout(), p.Notes(), category)
	}

	path, err := notesPath(p.Notes(), category)
	if err != nil {
		return err
	}
	return launch.OpenEditor(cmd.Context(), a.cfg.Repl.Editor, path)
}

func printNotes(out io.Writer, store *notes.Store, category string) error {
	if category != "" {
		c, err := notes.ParseCategory(category)
		if err != nil {
			return err
		}
		content, err := store.Read(c)
		if err != nil {
			return err
		}
		fmt.Fprint(out, content)
		if content != "" && !strings.HasSuffix(content, "\n") {
			fmt.Fprintln(out)
		}
		return nil
	}

	all, err := store.ReadAll()
	if err != nil {
		return err
	}
	for i, c := range notes.Categories {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "## %s\n\n", c)
		content := strings.TrimRight(all[c], "\n")
		if strings.TrimSpace(content) == "" {
			content = "(empty)"
		}
		fmt.Fprintln(out, content)
	}
	return nil
}

func runArchive(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if err := a.manager.Archive(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Project '%s' archived.\n", args[0])
	return nil
}

func runLink(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	child, parent := args[0], args[1]
	if err := a.manager.Link(child, parent); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Linked '%s' -> '%s'. Child will inherit parent's architecture notes.\n", child, parent)
	return nil
}

func runUnlink(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	previous, err := a.manager.Unlink(args[0])
	if err != nil {
		return err
	}
	if previous == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Project '%s' has no parent link.\n", args[0])
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Unlinked '%s' from '%s'.\n", args[0], previous)
	return nil
}

// formatTime renders a timestamp for listings.
func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}
