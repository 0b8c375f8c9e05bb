package medgraph

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	medgraph "github.com/soundprediction/medgraph"
	"github.com/soundprediction/medgraph/pkg/config"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer medical questions over the knowledge graph",
	Long: `Answer a medical question using the knowledge graph and the detected
communities. With a question argument it answers once and exits; without one
it enters an interactive loop.

Community detection must have run first; the query phase refuses to start
without its artifacts.`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, err := medgraph.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	ctx := context.Background()
	defer client.Close(ctx)

	if len(args) > 0 {
		return answerOne(ctx, client, strings.Join(args, " "))
	}
	return interactiveLoop(ctx, client)
}

func answerOne(ctx context.Context, client medgraph.MedGraph, question string) error {
	answer, err := client.Answer(ctx, question)
	if err != nil {
		return err
	}
	fmt.Printf("[%s query]\n%s\n", answer.Class, answer.Text)
	return nil
}

func interactiveLoop(ctx context.Context, client medgraph.MedGraph) error {
	fmt.Println("Interactive mode. Type your medical questions, or 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n? ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "":
			continue
		case "quit", "exit", "q":
			return scanner.Err()
		}
		if err := answerOne(ctx, client, question); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return scanner.Err()
}
