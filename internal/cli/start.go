package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/andrewimm/clancy/internal/briefing"
	"github.com/andrewimm/clancy/internal/launch"
	"github.com/andrewimm/clancy/internal/session"
	"github.com/spf13/cobra"
)

var startMode string

var startCmd = &cobra.Command{
	Use:   "start <project>",
	Short: "Start a session and enter the clancy REPL",
	Long: `Opens (or creates) the project, injects its context and reads tasks from
the terminal. Anything that is not a /command is run as a Claude Code task.`,
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startMode, "mode", "", "Conversation mode for this session (fresh, summary, full)")
}

func runStart(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if err := launch.CheckInstalled(a.cfg.Runner.Command); err != nil {
		return err
	}

	modeName := a.cfg.Context.ConversationMode
	if startMode != "" {
		modeName = startMode
	}
	mode, err := briefing.ParseMode(modeName)
	if err != nil {
		return err
	}

	p, err := a.manager.OpenOrCreate(args[0])
	if err != nil {
		return err
	}
	if err := p.RecordSessionStart(); err != nil {
		return err
	}

	out := newSyncWriter(cmd.OutOrStdout())
	fmt.Fprintf(out, "Loading project: %s (%d prior sessions, %d tasks)\n",
		p.Metadata.Name, p.Metadata.Stats.TotalSessions, p.Metadata.Stats.TotalTasks)

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	index := a.openIndex()
	if index != nil {
		defer index.Close()
	}

	s := session.New(session.Config{
		Project:          p,
		Parent:           a.parentFor(p),
		Runner:           &launch.ClaudeRunner{Command: a.cfg.Runner.Command},
		Engine:           a.engine(),
		Index:            index,
		WorkDir:          cwd,
		MaxContextTokens: a.cfg.Context.MaxContextTokens,
		Mode:             mode,
		Out:              out,
	})

	doc, err := s.CompileContext()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Injected context (~%d tokens)\n\n", doc.Tokens)

	r := &repl{
		session:     s,
		in:          bufio.NewReader(cmd.InOrStdin()),
		out:         out,
		editor:      a.cfg.Repl.Editor,
		promptStyle: a.cfg.Repl.PromptStyle,
	}
	return r.run(cmd.Context())
}
