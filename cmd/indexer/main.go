package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/agenthands/copycheck/internal/config"
	"github.com/agenthands/copycheck/internal/corpus"
	"github.com/agenthands/copycheck/internal/embed"
	"github.com/agenthands/copycheck/internal/index"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	modelKey   string
	outDir     string
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	rootCmd := &cobra.Command{
		Use:           "indexer",
		Short:         "Build and inspect copyright-check embedding indexes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $CONFIG_PATH or "+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&modelKey, "model", "", "Embedding model key (default from config)")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", "", "Index cache root (default from config)")

	rootCmd.AddCommand(buildCmd(), statsCmd(), modelsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// settings resolves config and lets flags override the model key and cache root.
func settings() (*config.Config, error) {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return nil, err
	}
	if modelKey != "" {
		cfg.Copyright.ModelKey = modelKey
	}
	if outDir != "" {
		cfg.Copyright.CacheDir = outDir
	}
	if _, ok := embed.Lookup(cfg.Copyright.ModelKey); !ok {
		return nil, fmt.Errorf("unknown model %q (known: %v)", cfg.Copyright.ModelKey, embed.Keys())
	}
	return cfg, nil
}

func buildCmd() *cobra.Command {
	var (
		corpusPath string
		batchSize  int
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Embed the corpus and publish the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings()
			if err != nil {
				return err
			}
			if corpusPath == "" {
				corpusPath = cfg.Copyright.CorpusPath
			}
			ctx := context.Background()
			key := cfg.Copyright.ModelKey

			rows, err := corpus.Load(ctx, corpusPath)
			if err != nil {
				return err
			}
			log.Printf("Loaded %d games from %s", len(rows), corpusPath)

			m, err := embed.Open(ctx, key, cfg.LLM)
			if err != nil {
				return err
			}
			idx, err := index.Build(ctx, rows, m, key, batchSize)
			if err != nil {
				return err
			}
			if err := index.Write(cfg.Copyright.CacheDir, key, idx); err != nil {
				return err
			}
			fmt.Printf("Wrote %d vectors (dimension %d, %s) to %s\n",
				idx.Stats.NumItems, idx.Stats.Dimension, idx.Stats.ModelName, index.Dir(cfg.Copyright.CacheDir, key))
			return nil
		},
	}
	cmd.Flags().StringVar(&corpusPath, "corpus", "", "Corpus file: .csv, .json or .db/.sqlite (default from config)")
	cmd.Flags().IntVar(&batchSize, "batch-size", index.DefaultBatchSize, "Records per embedding request")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the stats of a published index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings()
			if err != nil {
				return err
			}
			idx, err := index.Load(cfg.Copyright.CacheDir, cfg.Copyright.ModelKey)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(idx.Stats)
		},
	}
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List known embedding models",
		Run: func(cmd *cobra.Command, args []string) {
			for _, key := range embed.Keys() {
				spec, _ := embed.Lookup(key)
				fmt.Printf("%-14s %-8s %-26s %d\n", key, spec.Provider, spec.ModelName, spec.Dimension)
			}
		},
	}
}
