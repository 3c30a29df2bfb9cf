// Command simsearch is a terminal client for the ArXiv similarity-search
// backend: paste an abstract, pick a corpus, browse the top matches, and
// request long-form summaries per paper.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/csheth/simsearch/internal/applog"
	"github.com/csheth/simsearch/internal/backend"
	"github.com/csheth/simsearch/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "simsearch",
	Short: "Find research papers similar to an abstract",
	Long: `simsearch talks to the similarity-search backend over HTTP. Searches run
against either a precomputed local corpus or live arXiv data and can take
up to 90 seconds; the UI stays responsive throughout and every match can
be expanded into a structured summary.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.Flags()
	flags.String("config", "", "config file (default: ./simsearch.yaml or ~/.config/simsearch/simsearch.yaml)")
	flags.String("backend-url", "http://localhost:8000", "base URL of the similarity-search backend")
	flags.Duration("search-timeout", 90*time.Second, "ceiling for a single search request")
	flags.Duration("summary-timeout", 90*time.Second, "ceiling for a single summary request")
	flags.String("log-dir", "", "directory for the run log (default: user cache dir)")
	flags.Bool("no-alt-screen", false, "disable the alternate screen buffer")

	for _, key := range []string{"backend-url", "search-timeout", "summary-timeout", "log-dir", "no-alt-screen"} {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}
}

func initConfig() {
	// A local .env can carry SIMSEARCH_* overrides during development.
	_ = godotenv.Load()

	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("simsearch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "simsearch"))
		}
	}

	viper.SetEnvPrefix("SIMSEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "config:", err)
		}
	}
}

func run(cmd *cobra.Command, args []string) error {
	logDir := viper.GetString("log-dir")
	if logDir == "" {
		if cache, err := os.UserCacheDir(); err == nil {
			logDir = filepath.Join(cache, "simsearch")
		}
	}
	if logDir != "" {
		if err := applog.Init(logDir); err != nil {
			fmt.Fprintln(os.Stderr, "run log disabled:", err)
		} else {
			defer applog.Close()
		}
	}

	client := backend.New(backend.Config{
		BaseURL:        viper.GetString("backend-url"),
		SearchTimeout:  viper.GetDuration("search-timeout"),
		SummaryTimeout: viper.GetDuration("summary-timeout"),
	})
	applog.Info("startup", "backend", client.BaseURL(), "search_timeout", client.SearchTimeout())

	opts := []tea.ProgramOption{}
	if !viper.GetBool("no-alt-screen") {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(tui.New(tui.Config{Client: client}), opts...)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
