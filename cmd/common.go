/*
Copyright © 2026 The seoforge authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/seoforge/seoforge/internal/catalog"
	"github.com/seoforge/seoforge/internal/config"
	"github.com/seoforge/seoforge/internal/provider"
)

// loadConfig resolves the configuration for the current invocation.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// buildProvider constructs the configured generation backend wrapped in
// the retrying client.
func buildProvider(cfg *config.Config) (provider.Provider, error) {
	var p provider.Provider
	switch cfg.Provider.Name {
	case "openai":
		o, err := provider.NewOpenAI(cfg.Provider.APIKey, cfg.Provider.Model, cfg.Provider.BaseURL)
		if err != nil {
			return nil, err
		}
		p = o
	case "ollama":
		p = provider.NewOllama(cfg.Provider.BaseURL, cfg.Provider.Model)
	case "mock":
		p = provider.Mock{}
	default:
		return nil, fmt.Errorf("unknown provider %q (expected openai, ollama, or mock)", cfg.Provider.Name)
	}
	return provider.NewClient(p, provider.DefaultAttempts, provider.DefaultBaseDelay), nil
}

// buildCatalog loads the content type catalog, honoring an override file.
func buildCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		if err := cat.LoadFile(cfg.CatalogFile); err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}
	return cat, nil
}
