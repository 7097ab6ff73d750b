// Package cli provides the athena command line interface.
//
// Services are injected by main through SetServices before Execute runs.
// A nil service makes the commands that need it fail with a configuration
// error instead of panicking.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driving"
	"github.com/custodia-labs/athena/internal/logger"
)

// version is set by main from build flags.
var version = "dev"

// verbose enables debug logging.
var verbose bool

// Services wired by main.
var (
	ingestionService driving.IngestionService
	contextService   driving.ContextService
	chatService      driving.ChatService
	storeService     driving.StoreService
	settingsService  driving.SettingsService
	contextDefaults  = domain.ContextSettings{
		TopK:     domain.DefaultTopK,
		MaxChars: domain.DefaultMaxContextChars,
	}
	settableKeys []string
)

// Services holds the driving ports the commands call.
type Services struct {
	Ingestion driving.IngestionService
	Context   driving.ContextService
	Chat      driving.ChatService
	Store     driving.StoreService
	Settings  driving.SettingsService

	// ContextDefaults supplies k and the character budget when flags are unset.
	ContextDefaults domain.ContextSettings

	// SettableKeys lists the keys accepted by "settings set".
	SettableKeys []string
}

// SetServices injects the services used by every command.
func SetServices(s *Services) {
	ingestionService = s.Ingestion
	contextService = s.Context
	chatService = s.Chat
	storeService = s.Store
	settingsService = s.Settings
	if s.ContextDefaults.TopK > 0 {
		contextDefaults.TopK = s.ContextDefaults.TopK
	}
	if s.ContextDefaults.MaxChars > 0 {
		contextDefaults.MaxChars = s.ContextDefaults.MaxChars
	}
	settableKeys = s.SettableKeys
}

// SetVersion sets the version reported by "athena version".
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "athena",
	Short: "Ask questions about your documents, in your language",
	Long: `Athena indexes PDF, text and Markdown documents into a local vector store
and answers questions from their content. Questions in any language are
translated to English for retrieval and the answer is translated back.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
