package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

const defaultQuizQuestions = 5

var (
	summarizeSources []string
	quizSources      []string
	quizQuestions    int
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarise indexed documents",
	Long: `Summarises the indexed text piece by piece and combines the partial
summaries into one. Use --source to limit the summary to some documents.`,
	Args: cobra.NoArgs,
	RunE: runSummarize,
}

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate multiple-choice questions",
	Long:  `Writes multiple-choice questions, with answers, from the indexed text.`,
	Args:  cobra.NoArgs,
	RunE:  runQuiz,
}

func init() {
	summarizeCmd.Flags().StringSliceVarP(&summarizeSources, "source", "s", nil, "documents to summarise (all when empty)")
	quizCmd.Flags().IntVarP(&quizQuestions, "questions", "q", defaultQuizQuestions, "number of questions")
	quizCmd.Flags().StringSliceVarP(&quizSources, "source", "s", nil, "documents to draw questions from")
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(quizCmd)
}

func runSummarize(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	summary, err := chatService.Summarize(cmd.Context(), summarizeSources)
	if err != nil {
		return fmt.Errorf("summarize failed: %w", err)
	}
	cmd.Println(summary)
	return nil
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	if quizQuestions < 1 {
		return errors.New("--questions must be at least 1")
	}

	quiz, err := chatService.Quiz(cmd.Context(), quizQuestions, quizSources)
	if err != nil {
		return fmt.Errorf("quiz failed: %w", err)
	}
	cmd.Println(quiz)
	return nil
}
