package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"postcraft/pkg/config"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

var envOrder = []string{
	"LLM_PROVIDER",
	"API_KEY",
	"TEXT_MODEL",
	"IMAGE_BACKEND_ENABLED",
	"PROJECT",
	"LOCATION",
	"GCS_BUCKET",
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for Postcraft",
	Long:  `Choose a text backend, store its API key, optionally enable Imagen and a GCS mirror, and create the output directories.`,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println(titleStyle.Render("Postcraft Setup"))

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Creating directories", createDirectories},
		{"Configuring environment", configureEnv},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	return nil
}

func createDirectories() error {
	dirs := []string{"posts", "images"}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	fmt.Println(successStyle.Render("✓ Created directories"))
	return nil
}

func configureEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		var overwrite bool
		if err := huh.NewConfirm().
			Title("Found existing .env file").
			Description("Overwrite?").
			Value(&overwrite).
			Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println(infoStyle.Render("Kept existing .env"))
			return nil
		}
	}

	env := make(map[string]string)

	if err := configureTextBackend(env); err != nil {
		return err
	}

	if err := configureGCP(env); err != nil {
		return err
	}

	return writeEnvFile(env)
}

func configureTextBackend(env map[string]string) error {
	provider := config.ProviderGemini
	var apiKey, model string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Text backend").
				Options(
					huh.NewOption("Google Gemini", config.ProviderGemini),
					huh.NewOption("Groq", config.ProviderGroq),
					huh.NewOption("OpenAI (or compatible)", config.ProviderOpenAI),
				).
				Value(&provider),
			huh.NewInput().
				Title("API Key").
				Description("Gemini: https://aistudio.google.com/apikey  Groq: https://console.groq.com/keys").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey).
				Validate(required("API Key")),
			huh.NewInput().
				Title("Model (optional)").
				Description("Leave empty for the provider default").
				Value(&model),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	env["LLM_PROVIDER"] = provider
	env["API_KEY"] = strings.TrimSpace(apiKey)
	if model = strings.TrimSpace(model); model != "" {
		env["TEXT_MODEL"] = model
	}
	return nil
}

func configureGCP(env map[string]string) error {
	var enableImages, enableMirror bool
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Generate images with Imagen?").
				Description("Requires a Google Cloud project with Vertex AI. Without it posts get a placeholder image.").
				Value(&enableImages),
			huh.NewConfirm().
				Title("Mirror posts to Cloud Storage?").
				Description("Uploads every saved post and restores missing ones on start").
				Value(&enableMirror),
		),
	).Run(); err != nil {
		return err
	}

	if !enableImages && !enableMirror {
		env["IMAGE_BACKEND_ENABLED"] = "false"
		return nil
	}

	if !commandExists("gcloud") {
		fmt.Println(warnStyle.Render("gcloud CLI not found - install from https://cloud.google.com/sdk/docs/install"))
	}

	project, err := chooseGCPProject()
	if err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("GCP setup skipped: %v", err)))
		return nil
	}
	env["PROJECT"] = project

	if enableImages {
		location := "us-central1"
		if err := huh.NewInput().
			Title("Vertex AI location").
			Value(&location).
			Run(); err != nil {
			return err
		}
		env["IMAGE_BACKEND_ENABLED"] = "true"
		env["LOCATION"] = strings.TrimSpace(location)
	}

	if enableMirror {
		var bucket string
		if err := huh.NewInput().
			Title("Bucket name").
			Placeholder(project + "-posts").
			Value(&bucket).
			Validate(required("Bucket name")).
			Run(); err != nil {
			return err
		}
		env["GCS_BUCKET"] = strings.TrimSpace(bucket)
	}

	if commandExists("gcloud") {
		if err := enableGCPAPIs(project, enableImages, enableMirror); err != nil {
			fmt.Println(warnStyle.Render(fmt.Sprintf("API enablement failed: %v", err)))
		}
	}

	return nil
}

func chooseGCPProject() (string, error) {
	projectID := getActiveProject()
	if err := huh.NewInput().
		Title("Google Cloud Project ID").
		Value(&projectID).
		Validate(required("Project ID")).
		Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(projectID), nil
}

func getActiveProject() string {
	if !commandExists("gcloud") {
		return ""
	}
	out, err := exec.Command("gcloud", "config", "get-value", "project").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func enableGCPAPIs(project string, images, mirror bool) error {
	apis := []string{"secretmanager.googleapis.com"}
	if images {
		apis = append(apis, "aiplatform.googleapis.com")
	}
	if mirror {
		apis = append(apis, "storage.googleapis.com")
	}

	return runWithSpinner("Enabling APIs", func() error {
		args := append([]string{"services", "enable"}, apis...)
		args = append(args, "--project", project)
		return runSetupCmd("gcloud", args...)
	})
}

func writeEnvFile(env map[string]string) error {
	if err := os.WriteFile(".env", []byte(formatEnv(env)), 0600); err != nil {
		return err
	}

	fmt.Println(successStyle.Render("✓ Created .env file"))
	printNextSteps()
	return nil
}

func formatEnv(env map[string]string) string {
	var b strings.Builder
	for _, key := range envOrder {
		if val, ok := env[key]; ok && val != "" {
			fmt.Fprintf(&b, "%s=%s\n", key, val)
		}
	}
	return b.String()
}

func printNextSteps() {
	fmt.Println()
	fmt.Println(titleStyle.Render("Next steps:"))
	fmt.Println("  1. Check credentials: postcraft auth status")
	fmt.Println("  2. Start chatting:    postcraft")
	fmt.Println("  3. Or generate once:  postcraft generate -p instagram -n fitness -a \"busy parents\"")
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func runSetupCmd(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %s", err, stderr.String())
	}
	return nil
}

func runWithSpinner(title string, fn func() error) error {
	var err error
	_ = spinner.New().
		Title(title).
		Action(func() { err = fn() }).
		Run()
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ " + title))
	return nil
}
