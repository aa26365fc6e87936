package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/RichardoC/lumi/internal/llm"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// Prints Lumi's reply to a single prompt, for trying out keyword catalogs:
//
//	go run . -catalog my-catalog.yaml "I can't sleep and feel exhausted"
func main() {
	catalogPath := flag.String("catalog", "", "keyword catalog YAML (default: built-in)")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	prompt := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(prompt) == "" {
		fmt.Fprintln(os.Stderr, "usage: lumi [-catalog file] <prompt>")
		os.Exit(2)
	}

	catalog := llm.DefaultCatalog()
	if *catalogPath != "" {
		c, err := llm.LoadCatalog(*catalogPath)
		if err != nil {
			logger.Fatal("failed to load catalog", zap.Error(err), zap.String("path", *catalogPath))
		}
		catalog = c
	}

	model := llm.NewScriptedModel(llm.NewClassifier(catalog, nil))
	completion, err := llms.GenerateFromSinglePrompt(context.Background(), model, prompt)
	if err != nil {
		logger.Fatal("failed to generate completion", zap.Error(err))
	}
	fmt.Println(completion)
}
