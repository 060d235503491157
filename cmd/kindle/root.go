package main

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Phrasing/kindle"
)

type rootOptions struct {
	envFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "kindle",
		Short: "List your Kindle library from the command line",
		Long: `kindle signs in to the Kindle web reader with cookies copied from your
browser and lists the books in your library.

Configuration is read from the environment (and a .env file):
  KINDLE_COOKIES, KINDLE_DEVICE_TOKEN, TLS_SERVER_URL, TLS_SERVER_API_KEY,
  KINDLE_TLS_PROFILE, KINDLE_PROXY_FILE, KINDLE_TIMEOUT.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Load configuration from this .env file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log requests to stderr")

	cmd.AddCommand(newBooksCmd(opts))
	cmd.AddCommand(newDetailsCmd(opts))
	cmd.AddCommand(newDeviceCmd(opts))

	return cmd
}

// stdLogger adapts log.Logger to kindle.Logger.
type stdLogger struct {
	logger *log.Logger
}

func (s *stdLogger) Log(format string, args ...any) {
	s.logger.Printf(format, args...)
}

func newLogger(verbose bool, w io.Writer) kindle.Logger {
	if !verbose {
		return kindle.NopLogger{}
	}
	return &stdLogger{logger: log.New(w, "", log.LstdFlags)}
}

// connect loads configuration and bootstraps a client.
func connect(cmd *cobra.Command, opts *rootOptions) (*kindle.Kindle, error) {
	var envFiles []string
	if opts.envFile != "" {
		envFiles = append(envFiles, opts.envFile)
	}

	cfg, err := kindle.LoadConfig(envFiles...)
	if err != nil {
		return nil, err
	}
	cfg.Logger = newLogger(opts.verbose, os.Stderr)

	return kindle.FromConfig(cmd.Context(), cfg)
}
