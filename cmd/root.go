package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose  bool
	logLevel = new(slog.LevelVar)
)

var rootCmd = &cobra.Command{
	Use:   "postcraft",
	Short: "Generate social media posts with a conversational assistant",
	Long: `Postcraft generates platform-tailored social media posts (topic, body,
image and hashtags), saves them locally and lets you chat about strategy,
get suggestions and search earlier posts.

Run without a subcommand to start the interactive chat.`,
	RunE:         runChat,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogger()
	}
}

func Execute() error {
	return rootCmd.Execute()
}

func setupLogger() {
	logLevel.Set(slog.LevelInfo)
	if verbose {
		logLevel.Set(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

// applyLogLevel uses the configured level unless --verbose was given.
func applyLogLevel(level slog.Level) {
	if !verbose {
		logLevel.Set(level)
	}
}
