package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"freight-ops-backend/internal/actions"
	"freight-ops-backend/internal/evaluate"
	"freight-ops-backend/internal/loads"
	"freight-ops-backend/internal/model"
	"freight-ops-backend/internal/parse"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// EvaluateOptions holds the evaluate command's flags.
type EvaluateOptions struct {
	LoadsPath string
	Now       string
	Format    string
}

// EvaluateResult is the json output of the evaluate command.
type EvaluateResult struct {
	GeneratedAtISO string                `json:"generatedAtISO"`
	Loads          []model.EvaluatedLoad `json:"loads"`
	Attention      []model.EvaluatedLoad `json:"attention"`
	Actions        []model.BrokerAction  `json:"actions"`
}

// NewEvaluateCommand creates the evaluate command.
func NewEvaluateCommand() *cobra.Command {
	opts := &EvaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a loads file once and print the result",
		Long: `Evaluate a JSON file of loads at a fixed instant and print every
evaluated load, the attention order and the derived actions.

Nothing is persisted: no snapshots, action state or notifications.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.LoadsPath, "loads", "l", "", "path to a JSON array of loads")
	cmd.Flags().StringVar(&opts.Now, "now", "", "evaluation instant in RFC3339 (default current time)")
	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	_ = cmd.MarkFlagRequired("loads")

	return cmd
}

func runEvaluate(ctx context.Context, opts *EvaluateOptions, w io.Writer) error {
	if !isValidFormat(opts.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
	}

	now := time.Now().UTC()
	if opts.Now != "" {
		t, err := time.Parse(time.RFC3339, opts.Now)
		if err != nil {
			return fmt.Errorf("invalid --now %q: %w", opts.Now, err)
		}
		now = t.UTC()
	}

	if ctx == nil {
		ctx = context.Background()
	}
	raw, err := (&loads.FileProvider{Path: opts.LoadsPath}).Loads(ctx)
	if err != nil {
		return err
	}

	nowISO := parse.ISO(now)
	evaluated := evaluate.AllLoads(raw, now)
	attention := evaluate.SortNeedsAttention(evaluate.NeedsAttention(evaluated))
	result := EvaluateResult{
		GeneratedAtISO: nowISO,
		Loads:          evaluated,
		Attention:      attention,
		Actions:        actions.Derive(actions.DeriveInput(attention), nowISO),
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return writeText(w, result)
}

func writeText(w io.Writer, r EvaluateResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Evaluated %d loads at %s\n\n", len(r.Loads), r.GeneratedAtISO)

	fmt.Fprintf(tw, "NEEDS ATTENTION (%d)\n", len(r.Attention))
	for _, l := range r.Attention {
		reason := l.ComputedRiskReason
		if p, ok := l.Primary(); ok {
			reason = string(p.Code) + ": " + p.Detail
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", l.ComputedStatus, l.ID, l.Lane(), reason)
	}

	fmt.Fprintf(tw, "\nACTIONS (%d)\n", len(r.Actions))
	for _, a := range r.Actions {
		fmt.Fprintf(tw, "  P%d\t%s\t%s\t%s\t%s\n", a.Priority, a.ActionType, a.LoadID, a.Title, a.Href)
	}
	return tw.Flush()
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
