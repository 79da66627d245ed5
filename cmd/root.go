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
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "seoforge",
	Short: "Iterative SEO content generator",
	Long: `seoforge generates marketing content with an LLM, scores each draft
against an SEO rubric, and refines it until the draft clears the quality
threshold or the iteration budget runs out.

Supported providers: OpenAI, Ollama (self-hosted), mock (offline)

Use "seoforge generate --help" for generation options.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default seoforge.yaml)")
}
