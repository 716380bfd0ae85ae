package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/avoskres/defectbase/internal/model"
	"github.com/avoskres/defectbase/internal/pipeline"
)

var (
	curateTimeout time.Duration
	curateDir     string
	curateJSONOut bool
)

// curateCmd represents the curate command
var curateCmd = &cobra.Command{
	Use:   "curate [article.json ...]",
	Short: "Run the curation pipeline over raw articles",
	Long: `Curate runs each raw article through the admission pipeline:
content gate, metadata extraction, QA synthesis, formatting, and indexing
into the knowledge store.

Each input file holds one raw article as JSON:
  {"source_locator": "https://...", "title": "...", "body_text": "...",
   "section_label": "...", "published_at": "2024-03-01T00:00:00Z"}

Example:
  defectbase curate article.json
  defectbase curate --dir ./scraped/
  OPENAI_API_KEY=sk-... defectbase curate article.json --json`,
	RunE: runCurate,
}

func init() {
	rootCmd.AddCommand(curateCmd)

	curateCmd.Flags().DurationVar(&curateTimeout, "timeout", 10*time.Minute, "overall curation timeout")
	curateCmd.Flags().StringVar(&curateDir, "dir", "", "curate every *.json article in a directory")
	curateCmd.Flags().BoolVar(&curateJSONOut, "json", false, "print results as JSON")
}

func runCurate(cmd *cobra.Command, args []string) error {
	paths := args
	if curateDir != "" {
		found, err := filepath.Glob(filepath.Join(curateDir, "*.json"))
		if err != nil {
			return fmt.Errorf("list articles in %s: %w", curateDir, err)
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no articles given (pass files or --dir)")
	}

	articles := make([]model.RawArticle, 0, len(paths))
	for _, path := range paths {
		art, err := readArticle(path)
		if err != nil {
			return err
		}
		articles = append(articles, art)
	}

	cfg := loadConfig()
	provider, err := newJudge(cfg)
	if err != nil {
		return err
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), curateTimeout)
	defer cancel()

	p := pipeline.New(provider, embedder, newStore(cfg), cfg)
	if err := p.EnsureCollections(ctx); err != nil {
		return err
	}

	if len(articles) == 1 {
		result, err := p.Curate(ctx, articles[0])
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	}

	results := p.CurateBatch(ctx, articles)
	accepted := 0
	for _, br := range results {
		if br.Err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", br.Article.SourceLocator, br.Err)
			continue
		}
		printResult(br.Result)
		if br.Result.Accepted {
			accepted++
		}
	}
	fmt.Printf("\nCurated %d articles: %d admitted\n", len(results), accepted)
	return nil
}

func readArticle(path string) (model.RawArticle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RawArticle{}, fmt.Errorf("read article %s: %w", path, err)
	}
	var art model.RawArticle
	if err := json.Unmarshal(data, &art); err != nil {
		return model.RawArticle{}, fmt.Errorf("parse article %s: %w", path, err)
	}
	if art.SourceLocator == "" {
		art.SourceLocator = path
	}
	return art, nil
}

func printResult(result *pipeline.CurationResult) {
	if curateJSONOut {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	if result.Accepted {
		fmt.Printf("✓ %s admitted as %s (%d QA pairs)\n",
			result.SourceLocator, result.Record.RecordID, len(result.QARecords))
		return
	}
	fmt.Printf("✗ %s rejected at %s: %s\n", result.SourceLocator, result.Stage, result.Reason)
	if verbose {
		for _, rec := range result.Verdict.Recommendations {
			fmt.Printf("  → %s\n", rec)
		}
	}
}
