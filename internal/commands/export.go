package commands

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const defaultServerURL = "http://localhost:8080"

func newExportCommand() *cobra.Command {
	var serverURL string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the transaction ledger as CSV from a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, serverURL, output)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", defaultServerURL, "base URL of the vigia server")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, serverURL, output string) error {
	body, err := fetch(serverURL + "/api/export/transactions.csv")
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
		return fmt.Errorf("writing export: %w", err)
	}
	if output != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Transactions exported to %s\n", output)
	}
	return nil
}

func fetch(url string) (io.ReadCloser, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("server answered %s for %s", resp.Status, url)
	}
	return resp.Body, nil
}
