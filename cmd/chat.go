package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"postcraft/internal/app"
	"postcraft/internal/chat"
)

var (
	youStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	botStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive assistant (default)",
	Long: `Start an interactive session. Type 'help' for commands, 'exit' to quit.
Anything that is not a command is sent to the assistant as chat.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	result, err := loadService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = result.Close() }()

	service := result.Service
	cfg := service.Config()
	session := chat.NewSession(chat.Options{
		Text:          service.Text(),
		Prompts:       service.Prompts(),
		Pipeline:      app.NewPipeline(service),
		Posts:         service.Store(),
		MaxTurns:      cfg.Chat.HistoryTurns,
		SuggestWindow: cfg.Chat.SuggestWindow,
	})

	return repl(ctx, session, os.Stdin, os.Stdout)
}

func repl(ctx context.Context, session *chat.Session, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, titleStyle.Render("Postcraft: your social media assistant"))
	fmt.Fprintln(out, chat.HelpText)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, "\n"+youStyle.Render("You:")+" ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		reply, err := handleLine(ctx, session, line)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("Error: "+firstLine(err.Error())))
			continue
		}

		fmt.Fprintln(out, "\n"+botStyle.Render("Assistant:")+" "+reply.Text)
		if reply.Exit {
			return nil
		}
	}

	return scanner.Err()
}

// handleLine lets Ctrl-C cancel the running command without ending the session.
func handleLine(ctx context.Context, session *chat.Session, line string) (chat.Reply, error) {
	cmdCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cmd, err := chat.Parse(line)
	if err != nil {
		return chat.Reply{}, err
	}

	var reply chat.Reply
	run := func() { reply, err = session.Handle(cmdCtx, cmd) }
	if _, ok := cmd.(chat.GenerateCommand); ok {
		withSpinner("Generating post...", run)
	} else {
		run()
	}
	return reply, err
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
