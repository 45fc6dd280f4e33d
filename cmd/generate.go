package cmd

import (
	"fmt"
	"log/slog"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"postcraft/internal/app"
	"postcraft/internal/app/model"
	"postcraft/internal/chat"
)

var (
	genPlatform string
	genNiche    string
	genAudience string
	genTone     string
	genOpen     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a single post",
	Long:  `Generate one post (topic, body, image and hashtags) and save it to the posts directory.`,
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genPlatform, "platform", "p", "", "Target platform: instagram, linkedin, twitter or facebook")
	generateCmd.Flags().StringVarP(&genNiche, "niche", "n", "", "Content niche")
	generateCmd.Flags().StringVarP(&genAudience, "audience", "a", "", "Target audience")
	generateCmd.Flags().StringVarP(&genTone, "tone", "t", model.DefaultTone, "Writing tone")
	generateCmd.Flags().BoolVar(&genOpen, "open", false, "Open the saved image when done")
	_ = generateCmd.MarkFlagRequired("platform")
	_ = generateCmd.MarkFlagRequired("niche")
	_ = generateCmd.MarkFlagRequired("audience")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	platform, err := model.ParsePlatform(genPlatform)
	if err != nil {
		return err
	}
	req, err := model.NewRequest(platform, genNiche, genAudience, genTone)
	if err != nil {
		return err
	}

	result, err := loadService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = result.Close() }()

	pipeline := app.NewPipeline(result.Service)

	var post *model.Result
	withSpinner("Generating post...", func() {
		post, err = pipeline.Run(ctx, req)
	})
	if err != nil {
		return err
	}

	fmt.Println(chat.FormatResult(post))

	if genOpen && post.Image.Path != "" {
		if err := browser.OpenFile(post.Image.Path); err != nil {
			slog.Warn("Failed to open image", "path", post.Image.Path, "error", err)
		}
	}
	return nil
}
