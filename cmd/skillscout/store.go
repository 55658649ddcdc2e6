package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/voyantlabs/skillscout/pkg/analyze"
	"github.com/voyantlabs/skillscout/pkg/config"
	"github.com/voyantlabs/skillscout/pkg/embeddings"
	"github.com/voyantlabs/skillscout/pkg/index"
	"github.com/voyantlabs/skillscout/pkg/llm"
	"github.com/voyantlabs/skillscout/pkg/skills"
)

const llmTimeout = 60 * time.Second

// newIndexStore wires an index store from the environment: skill roots from
// discovery defaults, the embedding provider if an API key is present, and
// an analyzer backed by whatever LLM CLI is on PATH.
func newIndexStore(skipLLM bool) (*index.Store, error) {
	dir, err := config.IndexDir(viper.GetString("index_path"))
	if err != nil {
		return nil, err
	}

	discovery, err := skills.NewDiscovery()
	if err != nil {
		return nil, err
	}

	analyzer := analyze.NewAnalyzer(llm.NewCLIClient(llmTimeout), analyze.WithSkipLLM(skipLLM))

	return index.NewStore(dir,
		index.WithDiscovery(discovery),
		index.WithAnalyzer(analyzer),
		index.WithProvider(embeddings.Detect()),
	), nil
}
