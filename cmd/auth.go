package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2/google"

	"postcraft/pkg/config"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Inspect credentials for the configured backends",
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check authentication status for all services",
	Long: `Verify the text backend API key and, when Google Cloud features are enabled
(image backend, GCS mirror, Secret Manager), Application Default Credentials.`,
	RunE: runAuthStatus,
}

func init() {
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	fmt.Println(infoStyle.Render("\nService Authentication Status:\n"))

	if cfg.APIKey != "" {
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ %s: API key configured (model %s)", cfg.LLM.Provider, cfg.LLM.Model)))
	} else {
		fmt.Println(errorStyle.Render(fmt.Sprintf("✗ %s: missing API_KEY", cfg.LLM.Provider)))
	}

	if !needsGoogleCloud(cfg) {
		fmt.Println(infoStyle.Render("○ Google Cloud: not needed (image backend, GCS and Secret Manager disabled)"))
		fmt.Println()
		return nil
	}

	if err := checkApplicationDefault(ctx); err != nil {
		fmt.Println(errorStyle.Render("✗ Google Cloud: " + err.Error()))
		fmt.Println(infoStyle.Render("  Run: gcloud auth application-default login"))
	} else {
		fmt.Println(successStyle.Render("✓ Google Cloud: application default credentials valid"))
	}

	if cfg.Image.Enabled {
		if cfg.Project != "" && cfg.Location != "" {
			fmt.Println(successStyle.Render(fmt.Sprintf("✓ Imagen: %s in %s/%s", cfg.Image.Model, cfg.Project, cfg.Location)))
		} else {
			fmt.Println(errorStyle.Render("✗ Imagen: missing PROJECT or LOCATION"))
		}
	}
	if cfg.GCSBucket != "" {
		fmt.Println(successStyle.Render("✓ GCS mirror: gs://" + cfg.GCSBucket + "/" + cfg.Storage.GCSPrefix))
	}

	fmt.Println()
	return nil
}

func needsGoogleCloud(cfg *config.Config) bool {
	return cfg.Image.Enabled || cfg.GCSBucket != "" || cfg.Secrets.APIKey != ""
}

func checkApplicationDefault(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
	if err != nil {
		return fmt.Errorf("no application default credentials: %w", err)
	}

	token, err := creds.TokenSource.Token()
	if err != nil {
		return fmt.Errorf("credentials found but token refresh failed: %w", err)
	}
	if !token.Valid() {
		return fmt.Errorf("token expired at %s", token.Expiry.Format(time.RFC3339))
	}
	return nil
}
