package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/attendance-service/pkg/logger"
)

// app carries state shared by subcommands once flags are parsed.
type app struct {
	log *zap.Logger
}

// NewRootCmd builds the scrape command tree.
func NewRootCmd() *cobra.Command {
	var logLevel string
	a := &app{log: zap.NewNop()}

	root := &cobra.Command{
		Use:           "scrape",
		Short:         "scrape fetches student attendance from the portal and parses saved pages.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Credentials and portal settings live in .env; it is optional.
			_ = godotenv.Load()

			l, err := logger.New(logLevel)
			if err != nil {
				return fmt.Errorf("could not build logger: %w", err)
			}
			a.log = l
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level written to stderr (debug, info, warn, error).")

	root.AddCommand(newFetchCmd(a), newParseCmd())
	return root
}

func ExecuteContext(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
