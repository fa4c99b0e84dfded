package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tessro/verse/internal/config"
)

var initNoInput bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Creates a configuration file, walking through the required settings
interactively. --no-input writes a default config instead.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initNoInput, "no-input", false, "write defaults without prompting")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := cfgFile
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	if configPath == "" {
		return fmt.Errorf("could not determine config location")
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	newCfg := config.Default()

	if !initNoInput {
		if err := promptForConfig(newCfg); err != nil {
			return err
		}
	}

	if err := newCfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	_, _ = fmt.Fprintln(f, "# Verse Configuration")
	_, _ = fmt.Fprintln(f, "# https://github.com/tessro/verse")
	_, _ = fmt.Fprintln(f, "")

	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	if err := encoder.Encode(newCfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "created",
			"path":   configPath,
		})
		return nil
	}

	fmt.Printf("Created config file: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'verse auth login' to authenticate with Spotify")
	fmt.Println("  2. Run 'verse serve' to expose the session to your assistant")
	return nil
}

func promptForConfig(newCfg *config.Config) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Spotify client ID").
				Description("From https://developer.spotify.com/dashboard").
				Value(&newCfg.Spotify.ClientID),

			huh.NewSelect[string]().
				Title("Lyrics cache backend").
				Options(
					huh.NewOption("In-memory (per process)", "memory"),
					huh.NewOption("Redis", "redis"),
				).
				Value(&newCfg.Cache.Backend),

			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("info", "info"),
					huh.NewOption("debug", "debug"),
					huh.NewOption("warn", "warn"),
					huh.NewOption("error", "error"),
				).
				Value(&newCfg.Log.Level),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("init cancelled: %w", err)
	}

	if newCfg.Cache.Backend == "redis" {
		addrForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Redis address").
					Placeholder("localhost:6379").
					Value(&newCfg.Cache.RedisAddr),
			),
		)
		if err := addrForm.Run(); err != nil {
			return fmt.Errorf("init cancelled: %w", err)
		}
	}

	return nil
}
