package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ChatRequest represents the chat API request.
type ChatRequest struct {
	Message string `json:"message"`
}

// Citation represents one source reference in a chat response.
type Citation struct {
	Filename    string  `json:"filename"`
	Page        int     `json:"page"`
	TextSnippet string  `json:"text_snippet"`
	Score       float32 `json:"score"`
}

// ChatResponse represents the chat API response.
type ChatResponse struct {
	Answer    string     `json:"answer"`
	Intent    string     `json:"intent"`
	Citations []Citation `json:"citations"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question",
		Long:  "Asks a question; document questions are answered from the indexed corpus with citations.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runAsk(cmd *cobra.Command, question string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	var resp ChatResponse
	if err := api.PostJSON("/api/v1/chat", ChatRequest{Message: question}, &resp); err != nil {
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

	fmt.Println(resp.Answer)
	if len(resp.Citations) > 0 {
		fmt.Println("\nSources:")
		for _, c := range resp.Citations {
			fmt.Printf("  - %s (page %d, score %.2f)\n", c.Filename, c.Page, c.Score)
		}
	}
	return nil
}
