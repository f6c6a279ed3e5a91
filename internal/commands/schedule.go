package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newScheduleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Work with recurring payments on a running server",
	}

	cmd.AddCommand(newScheduleSyncCommand())
	cmd.AddCommand(newScheduleCalendarCommand())

	return cmd
}

func newScheduleSyncCommand() *cobra.Command {
	var serverURL string
	var horizonDays int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Expand recurring-payment templates into upcoming bills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduleSync(cmd, serverURL, horizonDays)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", defaultServerURL, "base URL of the vigia server")
	cmd.Flags().IntVar(&horizonDays, "horizon-days", 30, "how far ahead to plan bills")

	return cmd
}

func runScheduleSync(cmd *cobra.Command, serverURL string, horizonDays int) error {
	url := fmt.Sprintf("%s/api/bills/generate?horizon_days=%d", serverURL, horizonDays)
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server answered %s", resp.Status)
	}

	var body struct {
		Created int `json:"created"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d upcoming bill(s) registered\n", body.Created)
	return nil
}

func newScheduleCalendarCommand() *cobra.Command {
	var serverURL string
	var output string

	cmd := &cobra.Command{
		Use:   "calendar <bill-id>",
		Short: "Download a calendar reminder (.ics) for a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduleCalendar(cmd, serverURL, args[0], output)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", defaultServerURL, "base URL of the vigia server")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runScheduleCalendar(cmd *cobra.Command, serverURL, billID, output string) error {
	body, err := fetch(serverURL + "/api/bills/" + billID + "/calendar.ics")
	if err != nil {
		return err
	}
	defer body.Close()

	var out io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		out = f
	}

	if _, err := io.Copy(out, body); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	if output != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Calendar reminder written to %s\n", output)
	}
	return nil
}
