package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/osintlab/osint-platform/pkg/client"
)

var (
	resumeURL     string
	twitterHandle string
	maxPosts      int
)

var connectCmd = &cobra.Command{
	Use:   "connect <platform>",
	Short: "Connect a social account",
	Long: `Starts the OAuth connection flow for a platform and prints the
authorization URL to open in a browser. After the provider redirects,
paste the full callback URL back with --resume to finish the handshake.

Platforms without OAuth support here (instagram) prompt for credentials
instead. Twitter can skip OAuth entirely with --handle.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := requireSession(cmd)
		if err != nil {
			return err
		}

		platform := client.Platform(args[0])

		if resumeURL != "" {
			return resumeCallback(cmd.Context(), c, resumeURL)
		}

		if platform == client.Twitter && twitterHandle != "" {
			job, err := c.ConnectTwitterByHandle(cmd.Context(), twitterHandle, maxPosts)
			if err != nil {
				return err
			}
			fmt.Printf("Collected %d posts for @%s (job %s, status %s)\n",
				job.CollectedPosts, twitterHandle, job.ID, job.Status)
			return nil
		}

		if platform.RequiresCredentials() {
			return connectWithCredentials(cmd.Context(), c, platform)
		}

		intent, err := c.Connect(cmd.Context(), platform)
		if err != nil {
			return err
		}

		fmt.Printf("Open this URL in a browser to authorize %s:\n\n  %s\n\n", platform.DisplayName(), intent.AuthURL)
		fmt.Println("Then re-run with --resume '<callback URL from the browser>'")
		return nil
	},
}

// connectWithCredentials collects the credential form interactively.
func connectWithCredentials(ctx context.Context, c *client.Client, platform client.Platform) error {
	fmt.Printf("%s uses credential-based connection.\n", platform.DisplayName())

	email, err := promptLine("Email")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password")
	if err != nil {
		return err
	}
	target, err := promptLine("Target profile (optional)")
	if err != nil {
		return err
	}

	err = c.ConnectWithCredentials(ctx, client.CredentialConnectRequest{
		Platform: platform,
		Email:    email,
		Password: password,
		Target:   target,
		MaxPosts: maxPosts,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s connected; collection queued\n", platform.DisplayName())
	return nil
}

// resumeCallback consumes a pasted provider redirect URL.
// Misrouted provider redirects (code/state but no success marker) are
// forwarded to the backend callback endpoint; its own redirect is then
// classified the same way.
func resumeCallback(ctx context.Context, c *client.Client, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid callback URL: %w", err)
	}

	event := client.ParseCallback(u.Query())
	outcome, err := c.HandleCallback(ctx, event)
	if err != nil {
		return err
	}
	if outcome == nil {
		return fmt.Errorf("URL carries no OAuth callback parameters")
	}

	if outcome.ForwardURL != "" {
		final, err := forwardCallback(ctx, c, outcome.ForwardURL)
		if err != nil {
			return err
		}
		outcome = final
	}

	if outcome != nil && outcome.Notice != "" {
		fmt.Println(outcome.Notice)
	}
	return nil
}

// forwardCallback hits the backend callback endpoint without following
// its frontend redirect, then classifies the redirect's parameters.
func forwardCallback(ctx context.Context, c *client.Client, forwardURL string) (*client.CallbackOutcome, error) {
	httpClient := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, forwardURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("callback forward failed: %w", err)
	}
	defer resp.Body.Close()

	location, err := resp.Location()
	if err != nil {
		return nil, fmt.Errorf("backend callback returned no redirect (status %d)", resp.StatusCode)
	}

	return c.HandleCallback(ctx, client.ParseCallback(location.Query()))
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect <platform>",
	Short: "Disconnect a social account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := requireSession(cmd)
		if err != nil {
			return err
		}

		platform := client.Platform(args[0])
		if err := c.Disconnect(cmd.Context(), platform); err != nil {
			return err
		}

		fmt.Printf("%s disconnected\n", platform.DisplayName())
		return nil
	},
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List connected social accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := requireSession(cmd)
		if err != nil {
			return err
		}

		accounts, err := c.Accounts(cmd.Context())
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Println("No connected accounts")
			return nil
		}

		for _, acc := range accounts {
			lastSync := "never"
			if acc.LastSync != nil {
				lastSync = acc.LastSync.Format("2006-01-02 15:04")
			}
			fmt.Printf("%-10s  %-20s  connected %s  last sync %s\n",
				acc.Platform, acc.Username,
				acc.ConnectedAt.Format("2006-01-02"), lastSync)
		}
		return nil
	},
}

func init() {
	connectCmd.Flags().StringVar(&resumeURL, "resume", "", "Callback URL pasted from the browser")
	connectCmd.Flags().StringVar(&twitterHandle, "handle", "", "Twitter handle for OAuth-less collection")
	connectCmd.Flags().IntVar(&maxPosts, "max-posts", 0, "Post cap for credential or handle collection")

	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)
	rootCmd.AddCommand(accountsCmd)
}
