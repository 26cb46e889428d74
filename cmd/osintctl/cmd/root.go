// Package cmd implements the osintctl command tree.
// Configuration is resolved flag > environment > config file via viper;
// the session token persists in the client's file store so commands share
// one login across invocations.
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/osintlab/osint-platform/pkg/client"
)

const defaultAPIURL = "http://localhost:8000/api/v1"

var apiURL string

var rootCmd = &cobra.Command{
	Use:   "osintctl",
	Short: "CLI for the OSINT platform",
	Long: `osintctl drives the OSINT platform API: authentication, social
account connections, collection permissions, and a live dashboard.

Configuration precedence: --api-url flag, OSINTCTL_API_URL environment
variable, then api_url in ~/.config/osintctl/config.yaml.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides config and environment)")
}

func initConfig() {
	if dir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(dir, "osintctl"))
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("osintctl")
	viper.AutomaticEnv()
	viper.SetDefault("api_url", defaultAPIURL)

	// Missing config file is fine; flags and env still apply
	_ = viper.ReadInConfig()
}

// resolveAPIURL applies the flag > env > config precedence.
func resolveAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	return viper.GetString("api_url")
}

// newClient builds an API client with the file-backed session store.
func newClient() (*client.Client, error) {
	storePath, err := client.DefaultStorePath()
	if err != nil {
		return nil, err
	}
	store, err := client.NewFileTokenStore(storePath)
	if err != nil {
		return nil, err
	}

	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()

	return client.New(resolveAPIURL(),
		client.WithTokenStore(store),
		client.WithLogger(logger),
		client.WithTimeout(30*time.Second),
	), nil
}

// requireSession builds a client and validates the stored token, failing
// with a login hint when the session is absent or stale.
func requireSession(cmd *cobra.Command) (*client.Client, *client.User, error) {
	c, err := newClient()
	if err != nil {
		return nil, nil, err
	}

	user, err := c.Validate(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to validate session: %w", err)
	}
	if user == nil {
		return nil, nil, fmt.Errorf("not logged in; run `osintctl login` first")
	}
	return c, user, nil
}

// promptLine reads one line of input with a label.
func promptLine(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echoing when stdin is a
// terminal.
func promptPassword(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	return promptLine("")
}
