package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"postcraft/internal/app/model"
	"postcraft/internal/storage"
)

var (
	listPlatform string
	listNiche    string
	listQuery    string
	listLimit    int
)

var (
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	titleCell  = lipgloss.NewStyle().Bold(true)
	headerCell = lipgloss.NewStyle().Bold(true).Underline(true)
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved posts",
	Long:  `List saved posts, newest first, optionally filtered by platform, niche or a search query.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&listPlatform, "platform", "p", "", "Only posts for this platform")
	listCmd.Flags().StringVarP(&listNiche, "niche", "n", "", "Only posts in this niche")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Search titles, bodies and hashtags")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 10, "Maximum posts to show (0 for all)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	var platform model.Platform
	if listPlatform != "" {
		if platform, err = model.ParsePlatform(listPlatform); err != nil {
			return err
		}
	}

	store := storage.NewPostStore(cfg.Storage.PostsDir, cfg.Storage.ImagesDir)
	if err := store.Load(); err != nil {
		return err
	}

	var posts []storage.Record
	if listQuery != "" {
		posts = filterRecords(store.Search(listQuery), platform, listNiche, listLimit)
	} else {
		posts = store.ListRecent(platform, listNiche, listLimit)
	}

	if len(posts) == 0 {
		fmt.Println(infoStyle.Render("No posts found in " + cfg.Storage.PostsDir))
		return nil
	}

	fmt.Println(headerCell.Render(fmt.Sprintf("%-16s %-10s %-16s %s", "CREATED", "PLATFORM", "NICHE", "TITLE")))
	for _, p := range posts {
		fmt.Printf("%-16s %-10s %-16s %s\n",
			p.CreatedAt.Local().Format("2006-01-02 15:04"),
			p.Platform,
			truncate(p.Niche, 16),
			titleCell.Render(p.Title),
		)
		if len(p.Hashtags) > 0 {
			fmt.Println(dimStyle.Render(strings.Repeat(" ", 45) + strings.Join(p.Hashtags, " ")))
		}
	}
	return nil
}

func filterRecords(recs []storage.Record, platform model.Platform, niche string, limit int) []storage.Record {
	var out []storage.Record
	for _, r := range recs {
		if platform != "" && r.Platform != platform {
			continue
		}
		if niche != "" && !strings.EqualFold(r.Niche, niche) {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
