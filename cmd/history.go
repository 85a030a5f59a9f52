package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/skillsight/internal/backend"
	"github.com/spigell/skillsight/internal/view"
	"github.com/spigell/skillsight/internal/viewstate"
)

// maxParallelDeletes bounds concurrent DELETE requests.
const maxParallelDeletes = 4

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or delete past analyses",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent analyses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return historyList(cmd.Context(), cmd)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete analyses by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyDelete(cmd.Context(), cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyDeleteCmd)

	historyCmd.PersistentFlags().StringP("email", "e", "", "account email (password from "+passwordEnv+" or a prompt)")
	historyCmd.MarkPersistentFlagRequired("email")

	historyListCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
	historyDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

// openHistory signs in and loads the dashboard of the account.
func openHistory(ctx context.Context, cmd *cobra.Command, confirm func(string) bool) (*services, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	email, _ := cmd.Flags().GetString("email")

	s, err := newServices(ctx, confirm)
	if err != nil {
		return nil, err
	}

	if err := s.store.WaitSettled(ctx); err != nil {
		s.close()
		return nil, err
	}

	if err := signIn(ctx, s, email); err != nil {
		s.close()
		return nil, err
	}

	if err := s.controller.LoadSummaries(ctx); err != nil {
		s.close()
		return nil, errors.New(backend.Message(err, "Failed to load dashboard"))
	}

	return s, nil
}

func historyList(ctx context.Context, cmd *cobra.Command) error {
	output, _ := cmd.Flags().GetString("output")
	if output != outputText && output != outputJSON {
		return fmt.Errorf("unknown output format %q", output)
	}

	s, err := openHistory(ctx, cmd, nil)
	if err != nil {
		return err
	}
	defer s.close()

	return printHistory(cmd.OutOrStdout(), output, s.controller.Dashboard())
}

func printHistory(w io.Writer, output string, d viewstate.Dashboard) error {
	if output == outputJSON {
		pretty, err := json.MarshalIndent(d.Summaries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(pretty))
		return nil
	}

	if len(d.Summaries) == 0 {
		fmt.Fprintln(w, "No analyses yet.")
		return nil
	}

	avg := d.AvgMatchScore
	if avg == "" {
		avg = "0%"
	}

	fmt.Fprintf(w, "%d analyses, average match %s\n", d.Total, avg)
	for _, summary := range d.Summaries {
		fmt.Fprintf(w, "%-6s %s\n", summary.ID, view.Label(summary, false))
	}

	return nil
}

func historyDelete(ctx context.Context, cmd *cobra.Command, ids []string) error {
	yes, _ := cmd.Flags().GetBool("yes")

	// Asked once below for the whole batch.
	s, err := openHistory(ctx, cmd, func(string) bool { return true })
	if err != nil {
		return err
	}
	defer s.close()

	known := s.controller.Dashboard().Summaries.IDs()
	var found []string
	for _, id := range ids {
		if !slices.Contains(known, id) {
			s.logger.Warn("skipping unknown analysis", zap.String("analysis_id", id))
			continue
		}
		if !slices.Contains(found, id) {
			found = append(found, id)
		}
	}

	if len(found) == 0 {
		return errors.New("none of the given analyses exist in the recent history")
	}

	question := viewstate.DeleteConfirmation
	if len(found) > 1 {
		question = fmt.Sprintf("Are you sure you want to delete %d analyses?", len(found))
	}
	if !yes && !confirm(question) {
		return viewstate.ErrNotConfirmed
	}

	if err := deleteAll(ctx, s.controller, found); err != nil {
		return errors.New(backend.Message(err, "Failed to delete analysis"))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d analyses, %d left.\n", len(found), s.controller.Total())
	return nil
}

// deleteAll deletes ids concurrently. Every delete runs to completion even
// when another one fails; the first error is returned.
func deleteAll(ctx context.Context, c *viewstate.Controller, ids []string) error {
	var g errgroup.Group
	g.SetLimit(maxParallelDeletes)
	for _, id := range ids {
		g.Go(func() error {
			return c.Delete(ctx, id)
		})
	}

	return g.Wait()
}
