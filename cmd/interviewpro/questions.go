package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"interviewpro/internal/session"
	"interviewpro/internal/store"
)

var (
	questionCategory string
	questionText     string
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Manage the interview question bank",
}

// bank opens only the store; the question bank needs nothing else.
func bank() (*session.Bank, func() error, error) {
	st, err := store.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, nil, err
	}
	return session.NewBank(st), st.Close, nil
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions, optionally of one category",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, closeFn, err := bank()
		if err != nil {
			return err
		}
		defer closeFn()

		qs, err := b.List(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, q := range session.Filter(qs, questionCategory) {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", q.ID, q.Category, q.Text)
		}
		return tw.Flush()
	},
}

var questionsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a custom question",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, closeFn, err := bank()
		if err != nil {
			return err
		}
		defer closeFn()

		q, err := b.Add(cmd.Context(), questionCategory, questionText)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), q.ID)
		return nil
	},
}

var questionsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Replace the text of a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, closeFn, err := bank()
		if err != nil {
			return err
		}
		defer closeFn()
		return b.Edit(cmd.Context(), args[0], questionText)
	},
}

var questionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, closeFn, err := bank()
		if err != nil {
			return err
		}
		defer closeFn()
		return b.Delete(cmd.Context(), args[0])
	},
}

var questionsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default question pool",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, closeFn, err := bank()
		if err != nil {
			return err
		}
		defer closeFn()
		return b.Reset(cmd.Context())
	},
}

func init() {
	questionsListCmd.Flags().StringVar(&questionCategory, "category", session.CategoryAll, "Category to show")
	questionsAddCmd.Flags().StringVar(&questionCategory, "category", "", "Category (required)")
	questionsAddCmd.Flags().StringVar(&questionText, "text", "", "Question text (required)")
	questionsEditCmd.Flags().StringVar(&questionText, "text", "", "New question text (required)")

	for _, c := range []*cobra.Command{questionsAddCmd, questionsEditCmd} {
		if err := c.MarkFlagRequired("text"); err != nil {
			panic(fmt.Sprintf("failed to mark text flag as required: %v", err))
		}
	}
	if err := questionsAddCmd.MarkFlagRequired("category"); err != nil {
		panic(fmt.Sprintf("failed to mark category flag as required: %v", err))
	}

	questionsCmd.AddCommand(questionsListCmd, questionsAddCmd, questionsEditCmd, questionsDeleteCmd, questionsResetCmd)
	rootCmd.AddCommand(questionsCmd)
}
