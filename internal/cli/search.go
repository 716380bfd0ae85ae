package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/avoskres/defectbase/internal/format"
	"github.com/avoskres/defectbase/internal/retrieve"
	"github.com/avoskres/defectbase/internal/store"
)

var (
	searchK        int
	searchCategory string
	searchPrinters []string
	searchMaterial []string
	searchStages   []string
	searchQA       bool
	searchJSONOut  bool
	searchTimeout  time.Duration
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Query the knowledge base with hybrid retrieval",
	Long: `Search embeds the query and runs a similarity search restricted to
records matching every supplied metadata filter, returning ranked,
deduplicated evidence.

Example:
  defectbase search "stringing PLA" --printer Ender-3 -k 5
  defectbase search "first layer will not stick" --category bed_adhesion
  defectbase search "what retraction distance for PETG" --qa`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVarP(&searchK, "top", "k", 5, "number of results")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "filter by problem category")
	searchCmd.Flags().StringSliceVar(&searchPrinters, "printer", nil, "filter by printer model(s)")
	searchCmd.Flags().StringSliceVar(&searchMaterial, "material", nil, "filter by material(s)")
	searchCmd.Flags().StringSliceVar(&searchStages, "stage", nil, "filter by print stage(s)")
	searchCmd.Flags().BoolVar(&searchQA, "qa", false, "search the QA collection instead of articles")
	searchCmd.Flags().BoolVar(&searchJSONOut, "json", false, "print results as JSON")
	searchCmd.Flags().DurationVar(&searchTimeout, "timeout", 30*time.Second, "search timeout")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	cfg := loadConfig()
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	filter := store.Filter{}
	if searchCategory != "" {
		filter[format.FieldProblemCategory] = []string{searchCategory}
	}
	if len(searchPrinters) > 0 {
		filter[format.FieldPrinterModels] = searchPrinters
	}
	if len(searchMaterial) > 0 {
		filter[format.FieldMaterials] = searchMaterial
	}
	if len(searchStages) > 0 {
		filter[format.FieldPrintStage] = searchStages
	}

	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	engine := retrieve.New(embedder, newStore(cfg), cfg)

	if searchQA {
		evidence, err := engine.SearchQA(ctx, query, filter, searchK)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return printQAEvidence(evidence)
	}

	evidence, err := engine.Search(ctx, query, filter, searchK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return printEvidence(evidence)
}

func printEvidence(evidence []retrieve.Evidence) error {
	if searchJSONOut {
		data, err := json.MarshalIndent(evidence, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(evidence) == 0 {
		fmt.Println("No matching evidence.")
		return nil
	}
	for i, ev := range evidence {
		fmt.Printf("%d. [%.3f] %s: %s\n", i+1, ev.Similarity, ev.Record.RecordID, ev.Record.Title)
		if verbose {
			fmt.Printf("   category=%s printers=%v materials=%v\n",
				ev.Record.ProblemCategory, ev.Record.PrinterModels, ev.Record.Materials)
		}
	}
	return nil
}

func printQAEvidence(evidence []retrieve.QAEvidence) error {
	if searchJSONOut {
		data, err := json.MarshalIndent(evidence, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(evidence) == 0 {
		fmt.Println("No matching evidence.")
		return nil
	}
	for i, ev := range evidence {
		fmt.Printf("%d. [%.3f] Q: %s\n   A: %s\n", i+1, ev.Similarity, ev.Record.Question, ev.Record.Answer)
	}
	return nil
}
