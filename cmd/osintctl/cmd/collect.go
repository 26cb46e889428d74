package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/osintlab/osint-platform/pkg/client"
)

var permissionsCmd = &cobra.Command{
	Use:   "permissions [platforms...]",
	Short: "Show or update collection permissions",
	Long: `Without arguments, shows the current permission flags. With a
comma- or space-separated platform list, replaces the enabled set:

  osintctl permissions twitter reddit
  osintctl permissions none`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := requireSession(cmd)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			perms, err := c.GetPermissions(cmd.Context())
			if err != nil {
				return err
			}
			printPermissions(perms)
			return nil
		}

		var platforms []client.Platform
		if !(len(args) == 1 && args[0] == "none") {
			for _, arg := range args {
				for _, name := range strings.Split(arg, ",") {
					if name = strings.TrimSpace(name); name != "" {
						platforms = append(platforms, client.Platform(name))
					}
				}
			}
		}

		perms, err := c.SetPermissions(cmd.Context(), platforms)
		if err != nil {
			return err
		}
		fmt.Println("Permissions updated")
		printPermissions(perms)
		return nil
	},
}

func printPermissions(perms *client.Permissions) {
	fmt.Printf("Granted: %t\n", perms.PermissionsGranted)
	if len(perms.EnabledPlatforms) == 0 {
		fmt.Println("Enabled: none")
		return
	}
	names := make([]string, len(perms.EnabledPlatforms))
	for i, p := range perms.EnabledPlatforms {
		names[i] = string(p)
	}
	fmt.Printf("Enabled: %s\n", strings.Join(names, ", "))
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Start a collection run across enabled platforms",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := requireSession(cmd)
		if err != nil {
			return err
		}

		jobs, err := c.CollectData(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Dispatched %d collection job(s):\n", len(jobs))
		for _, job := range jobs {
			fmt.Printf("  %-10s  %s  (%s)\n", job.Platform, job.ID, job.Status)
		}
		return nil
	},
}

var jobCmd = &cobra.Command{
	Use:   "job <id>",
	Short: "Show the status of a collection job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := requireSession(cmd)
		if err != nil {
			return err
		}

		job, err := c.Job(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Job:       %s\n", job.ID)
		fmt.Printf("Platform:  %s\n", job.Platform)
		fmt.Printf("Status:    %s\n", job.Status)
		fmt.Printf("Collected: %d\n", job.CollectedPosts)
		if job.Error != "" {
			fmt.Printf("Error:     %s\n", job.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(permissionsCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(jobCmd)
}
