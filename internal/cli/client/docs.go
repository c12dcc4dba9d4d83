package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

// DocumentSummary represents one entry of the document listing.
type DocumentSummary struct {
	Filename       string    `json:"filename"`
	Chunks         int       `json:"chunks"`
	LastIngestedAt time.Time `json:"last_ingested_at"`
}

// DownloadResponse represents the download API response.
type DownloadResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// DocsCmd creates the docs command with its subcommands.
func DocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage indexed documents",
	}

	cmd.AddCommand(docsListCmd())
	cmd.AddCommand(docsDownloadCmd())

	return cmd
}

func docsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List indexed documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDocsList(cmd, outputJSON)
		},
	}
}

func docsDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <filename>",
		Short: "Get a download link for an archived original",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocsDownload(cmd, args[0])
		},
	}
}

func runDocsList(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var docs []DocumentSummary
	if err := api.GetJSON("/api/v1/documents/", &docs); err != nil {
		return err
	}

	if outputJSON {
		out, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if len(docs) == 0 {
		fmt.Println("No documents indexed.")
		return nil
	}
	for _, d := range docs {
		fmt.Printf("%s\t%d chunks\t%s\n", d.Filename, d.Chunks, d.LastIngestedAt.Format(time.RFC3339))
	}
	return nil
}

func runDocsDownload(cmd *cobra.Command, filename string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp DownloadResponse
	path := fmt.Sprintf("/api/v1/documents/%s/download", url.PathEscape(filename))
	if err := api.GetJSON(path, &resp); err != nil {
		return err
	}

	fmt.Println(resp.URL)
	return nil
}
