package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/echomind-ai/echomind/pkg/auth"
	"github.com/echomind-ai/echomind/pkg/service"
	"github.com/echomind-ai/echomind/pkg/stores/sqlite"
)

var (
	portFlag int
	hostFlag string
	dbFlag   string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the memory service",
		Long:  longServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := dbFlag
			if dbPath == "" {
				dbPath = viper.GetString("storage.path")
			}

			store, err := sqlite.New(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open memory database: %w", err)
			}
			defer store.Close()

			tokens := auth.NewService(
				signingKey(),
				auth.WithTTL(viper.GetDuration("auth.token_ttl")),
			)

			srv := service.NewServer(
				service.WithMemoryStore(store),
				service.WithUserStore(store),
				service.WithTokenService(tokens),
			)

			return srv.Run(fmt.Sprintf("%s:%d", hostFlag, portFlag))
		},
	}
)

func signingKey() []byte {
	if key := os.Getenv("ECHOMIND_SIGNING_KEY"); key != "" {
		return []byte(key)
	}

	if key := viper.GetString("auth.signing_key"); key != "" {
		return []byte(key)
	}

	log.Warn("no signing key configured, tokens will not survive restarts with a proper key")
	return []byte("dev-only-signing-key")
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&portFlag, "port", "p", 3210, "Port to serve on")
	serveCmd.Flags().StringVarP(&hostFlag, "host", "H", "0.0.0.0", "Host address to bind to")
	serveCmd.Flags().StringVar(&dbFlag, "db", "", "Path to the SQLite database (defaults to storage.path)")
}

var longServe = `
Serve the EchoMind memory service: per-user memory CRUD over HTTP, backed by
SQLite, with register/login endpoints issuing the bearer tokens the client
uses.

Examples:
  # Serve on the default port with the configured database
  echomind serve

  # Serve on port 8080 with a throwaway database
  echomind serve --port 8080 --db /tmp/echomind.db
`
