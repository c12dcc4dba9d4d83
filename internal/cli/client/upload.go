package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// UploadResponse represents the upload API response.
type UploadResponse struct {
	Filename        string `json:"filename"`
	Message         string `json:"message"`
	ChunksProcessed int    `json:"chunks_processed"`
}

// UploadCmd creates the upload command.
func UploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document",
		Long:  "Uploads a PDF, TXT, or MD file for chunking, embedding, and indexing.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runUpload(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runUpload(cmd *cobra.Command, filePath string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp UploadResponse
	if err := api.UploadFile("/api/v1/documents/upload", filePath, &resp); err != nil {
		return err
	}

	if outputJSON {
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("%s: %s (%d chunks)\n", resp.Filename, resp.Message, resp.ChunksProcessed)
	return nil
}
