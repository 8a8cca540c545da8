package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"quiz-session-service/internal/parser"
)

// NewParseCmd converts a plain-text quiz into the JSON content format used by the API.
func NewParseCmd() *cobra.Command {
	var (
		title  string
		output string
	)
	cmd := &cobra.Command{
		Use:   "parse <quiz.txt>",
		Short: "Convert a text quiz to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return convertText(string(raw), title, out)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "quiz title, used as the topic")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to this file instead of stdout")
	return cmd
}

func convertText(raw, title string, out io.Writer) error {
	content, err := parser.ParseText(raw, title)
	if err != nil {
		return fmt.Errorf("parse quiz: %w", err)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(content)
}
