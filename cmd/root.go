package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/estuda/estuda/internal/app"
	"github.com/estuda/estuda/internal/config"
	"github.com/estuda/estuda/internal/logging"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "estuda",
	Short:         "Study scheduling and question generation",
	Long:          "Estuda tracks study sessions, schedules spaced revisions and generates exam-style questions.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations["skipConfig"] == "true" {
			return nil
		}
		path, _ := cmd.Flags().GetString("config")
		c, err := config.Load(path, cmd.Flags())
		if err != nil {
			return err
		}
		l, err := logging.New(c.Env, c.Debug)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		cfg, log = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// ExecuteContext runs the command tree; ctx is cancelled on interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", os.Getenv("ESTUDA_CONFIG"), "Path to a YAML config file (default $ESTUDA_CONFIG)")
	pf.String("db", "", "Path to SQLite database file (overrides ESTUDA_DB env var)")
	pf.String("env", "development", "Environment: development or production")
	pf.Bool("debug", false, "Enable debug logging")
	pf.String("llm-provider", "", "LLM provider: anthropic, openai, gemini, openrouter or mock")
	pf.String("owner", defaultOwner(), "Owner id the command acts for (default $ESTUDA_OWNER or \"local\")")
	pf.Bool("json", false, "Print results as JSON")

	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func defaultOwner() string {
	if o := os.Getenv("ESTUDA_OWNER"); o != "" {
		return o
	}
	return "local"
}

// openApp builds the service graph for one command. Callers close it.
func openApp(cmd *cobra.Command) (*app.App, error) {
	return app.New(cmd.Context(), cfg, log)
}

func ownerOf(cmd *cobra.Command) string {
	o, _ := cmd.Flags().GetString("owner")
	return o
}
