package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/itemforge/imlkit/internal/qti"
	"github.com/itemforge/imlkit/internal/scoring"
)

// responseFile is the on-disk shape of recorded candidate responses:
// {"RESPONSE": "b"} or {"RESPONSE": ["a","b"]}.
type responseFile map[string]any

func newScoreCmd(a *app) *cobra.Command {
	var itemPath, responsePath, values string
	var caseSensitive bool
	cmd := &cobra.Command{
		Use:   "score --item <item.json> [--responses <responses.json> | --values v1,v2]",
		Short: "Score candidate responses against a converted item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if itemPath == "" {
				return fmt.Errorf("--item is required")
			}
			b, err := os.ReadFile(itemPath)
			if err != nil {
				return err
			}
			var item qti.AssessmentItem
			if err := json.Unmarshal(b, &item); err != nil {
				return fmt.Errorf("parse %s: %w", itemPath, err)
			}

			var responses []scoring.Response
			switch {
			case responsePath != "":
				rb, err := os.ReadFile(responsePath)
				if err != nil {
					return err
				}
				var rf responseFile
				if err := json.Unmarshal(rb, &rf); err != nil {
					return fmt.Errorf("parse %s: %w", responsePath, err)
				}
				for id, v := range rf {
					responses = append(responses, scoring.Response{ID: id, Value: v})
				}
			case values != "":
				vals := splitCSV(values)
				var v any = vals[0]
				if len(vals) > 1 {
					v = vals
				}
				responses = append(responses, scoring.Response{ID: qti.ResponseID, Value: v})
			}

			opt := scoring.Options{CaseSensitive: caseSensitive || a.cfg.CaseSensitive}
			result := scoring.Score(item, responses, opt)
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&itemPath, "item", "", "converted item JSON file")
	cmd.Flags().StringVar(&responsePath, "responses", "", "candidate responses JSON file")
	cmd.Flags().StringVar(&values, "values", "", "inline comma-separated response values")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "case-sensitive matching")
	return cmd
}
