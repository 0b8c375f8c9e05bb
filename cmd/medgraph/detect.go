package medgraph

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	medgraph "github.com/soundprediction/medgraph"
	"github.com/soundprediction/medgraph/pkg/config"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run community detection over the knowledge graph",
	Long: `Run the offline community detection pipeline: load the graph snapshot,
cluster its entities into communities, characterize and summarize each
community, and persist the results to the graph and the artifact store.

Any previously detected communities are replaced.`,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().IntSlice("candidate-counts", nil, "Candidate community counts to evaluate")
	detectCmd.Flags().Float64("min-avg-size", 0, "Minimum average community size")
	detectCmd.Flags().String("artifacts-path", "", "Artifact store directory")
	detectCmd.Flags().String("lexicon", "", "YAML file overriding the built-in specialty lexicon")

	viper.BindPFlag("detection.candidate_counts", detectCmd.Flags().Lookup("candidate-counts"))
	viper.BindPFlag("detection.min_avg_size", detectCmd.Flags().Lookup("min-avg-size"))
	viper.BindPFlag("artifacts.path", detectCmd.Flags().Lookup("artifacts-path"))
	viper.BindPFlag("detection.lexicon_path", detectCmd.Flags().Lookup("lexicon"))
}

func runDetect(cmd *cobra.Command, args []string) error {
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

	result, err := client.DetectCommunities(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Detected %d communities (silhouette %.4f)\n",
		result.Partition.K, result.Partition.Quality)
	if result.SkippedRelationships > 0 {
		fmt.Printf("Skipped %d relationships with unknown endpoints\n", result.SkippedRelationships)
	}
	for _, c := range result.Communities {
		fmt.Printf("  %2d: %-24s %s (%d entities)\n", c.ID, c.Specialty, c.Theme, c.Size)
	}
	return nil
}
