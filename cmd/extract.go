package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/carelay/internal/extract"
)

func extractCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "extract [text...]",
		Short: "Show the tokens and links carelay would pick out of a message",
		Long:  "Runs the message extractor on the given text, or on stdin when no text is given. Nothing is sent.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}
			return printExtraction(cmd.OutOrStdout(), extract.Extract(text), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printExtraction(w io.Writer, r extract.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Tokens []string `json:"tokens"`
			URLs   []string `json:"urls"`
		}{Tokens: nonNil(r.Tokens), URLs: nonNil(r.URLs)})
	}

	if r.Empty() {
		fmt.Fprintln(w, "No contract addresses or links found.")
		return nil
	}
	for _, t := range r.Tokens {
		fmt.Fprintf(w, "token  %s\n", t)
	}
	for _, u := range r.URLs {
		fmt.Fprintf(w, "link   %s\n", u)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
