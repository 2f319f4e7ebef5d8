package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/lorekeeper/internal/cli"
	"github.com/Veraticus/lorekeeper/internal/service"
)

func pingCmd() *cobra.Command {
	var (
		attempts int
		delay    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Wait until the analysis backend answers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			client, err := newClient(settings)
			if err != nil {
				return err
			}

			start := time.Now()
			err = client.WaitReady(cmd.Context(), service.RetryOptions{
				MaxAttempts:  attempts,
				InitialDelay: delay,
				MaxDelay:     10 * time.Second,
				Multiplier:   2,
			})
			if err != nil {
				return fmt.Errorf("backend at %s is not reachable: %w", settings.BackendURL, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Backend at %s is up (%s)",
				settings.BackendURL, time.Since(start).Round(time.Millisecond))))
			return nil
		},
	}

	cmd.Flags().IntVar(&attempts, "attempts", 5, "how many times to try")
	cmd.Flags().DurationVar(&delay, "delay", 500*time.Millisecond, "delay before the first retry")

	return cmd
}
