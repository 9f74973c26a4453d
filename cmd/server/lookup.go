package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JustJay7/case-lookup/internal/apperr"
	"github.com/JustJay7/case-lookup/internal/form"
	"github.com/JustJay7/case-lookup/internal/lookup"
	"github.com/JustJay7/case-lookup/internal/render"
)

var lookupJSON bool

var lookupCmd = &cobra.Command{
	Use:   "lookup <case_type> <case_number> <filing_year>",
	Short: "Look up one case and print it",
	Example: `  case-lookup lookup Criminal 1234 2023
  case-lookup lookup CRL.A 77/B 2019 --json`,
	Args: cobra.ExactArgs(3),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "output the raw result as JSON")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	q, err := form.NewBuilder(nil).Build(form.Fields{
		CaseType:   args[0],
		CaseNumber: form.SanitizeCaseNumber(args[1]),
		FilingYear: args[2],
	})
	if err != nil {
		return errors.New(apperr.UserMessage(err))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ScraperTimeout)
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close(log)

	res, err := a.client.Search(ctx, q)
	if err != nil {
		return errors.New(apperr.UserMessage(err))
	}

	if lookupJSON {
		return printJSON(cmd.OutOrStdout(), res)
	}
	printResult(cmd.OutOrStdout(), q, res)
	return nil
}

func printJSON(w io.Writer, res *lookup.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func printResult(w io.Writer, q lookup.Query, res *lookup.Result) {
	r := render.Render(res)
	fmt.Fprintf(w, "Case:          %s\n", r.CaseNumber.Text)
	fmt.Fprintf(w, "Query:         %s\n", q.Display())
	fmt.Fprintf(w, "Parties:       %s\n", r.Parties.Text)
	fmt.Fprintf(w, "Filing date:   %s\n", r.FilingDate.Text)
	fmt.Fprintf(w, "Next hearing:  %s\n", r.NextHearing.Text)
	fmt.Fprintf(w, "Status:        %s\n", r.Status.Text)
	fmt.Fprintf(w, "Duration:      %ss\n", r.Duration.Text)

	fmt.Fprintln(w, "\nDocuments:")
	if len(r.Documents) == 0 {
		fmt.Fprintf(w, "  %s\n", r.NoDocumentsText())
	}
	for _, d := range r.Documents {
		fmt.Fprintf(w, "  - %s (%s)\n    %s\n", d.Title, d.Date, d.PreviewURL)
	}

	fmt.Fprintln(w, "\nTimeline:")
	if len(r.Timeline) == 0 {
		fmt.Fprintf(w, "  %s\n", r.NoTimelineText())
	}
	for _, e := range r.Timeline {
		fmt.Fprintf(w, "  %s  %s\n", e.Date, e.Event)
	}
}
