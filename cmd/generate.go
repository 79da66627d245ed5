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
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seoforge/seoforge/internal/chunker"
	"github.com/seoforge/seoforge/internal/history"
	"github.com/seoforge/seoforge/internal/session"
	"github.com/seoforge/seoforge/internal/validator"
)

var (
	genContentType  string
	genSource       string
	genInputFile    string
	genOutputFile   string
	genKeyword      string
	genTargetWords  int
	genAudience     string
	genTone         string
	genFramework    string
	genLocale       string
	genInstructions string
	genProviderName string
	genModel        string
	genBaseURL      string
	genAutoContinue bool
	genNoHistory    bool
	genVerbose      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate SEO-optimized content",
	Long: `Generate content from a keyword, a topic prompt, or an existing
document, refining the draft until it clears the quality threshold.

The source is either --source text or --input pointing at a file to
repurpose. When the score falls short after the first round you are
asked whether to spend more iterations; pass --yes to continue without
asking.

Examples:
  seoforge generate --type blog-post --source "ergonomic office chairs" -o post.md
  seoforge generate --type instagram-caption --input draft.md --keyword "summer sale"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if genProviderName != "" {
			cfg.Provider.Name = genProviderName
		}
		if genModel != "" {
			cfg.Provider.Model = genModel
		}
		if genBaseURL != "" {
			cfg.Provider.BaseURL = genBaseURL
		}

		req := session.Request{
			Mode:         "generate",
			ContentType:  genContentType,
			SourceText:   genSource,
			Keyword:      genKeyword,
			TargetWords:  genTargetWords,
			Audience:     genAudience,
			Tone:         genTone,
			Framework:    genFramework,
			Locale:       genLocale,
			Instructions: genInstructions,
		}
		if genInputFile != "" {
			raw, err := os.ReadFile(genInputFile)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}
			req.Mode = "repurpose"
			req.SourceText = string(raw)
		}
		if req.SourceText == "" {
			return fmt.Errorf("either --source or --input is required")
		}

		p, err := buildProvider(cfg)
		if err != nil {
			return err
		}
		cat, err := buildCatalog(cfg)
		if err != nil {
			return err
		}

		level := slog.LevelWarn
		if genVerbose {
			level = slog.LevelInfo
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		runner := session.NewRunner(p, cat, validator.New(), logger)
		runner.OnAttempt = func(a session.AttemptRecord) {
			fmt.Fprintf(os.Stderr, "Iteration %d: %d/100\n", a.Iteration, a.OverallScore)
		}

		ctx := context.Background()
		sess, res, err := runner.Run(ctx, req)
		if err != nil {
			return err
		}

		if res.Status == session.StatusNeedsRetry {
			if genAutoContinue || confirm(cmd.InOrStdin(), res.Message) {
				if res, err = runner.Resume(ctx, sess); err != nil {
					return err
				}
			}
		}

		if !genNoHistory && cfg.History.Path != "" {
			archive, err := history.New(cfg.History.Path)
			if err == nil {
				_ = archive.Save(ctx, history.Record{
					Tool:        "generate",
					ContentType: req.ContentType,
					Keyword:     req.Keyword,
					Status:      string(res.Status),
					Score:       res.Overall,
					Content:     res.Content,
				})
				archive.Close()
			}
		}

		if genOutputFile != "" {
			if dir := filepath.Dir(genOutputFile); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}
			if err := os.WriteFile(genOutputFile, []byte(res.Content), 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Preview: %s\n", chunker.Preview(res.Content, chunker.DefaultPreviewWords))
		} else {
			fmt.Println(res.Content)
		}

		fmt.Fprintf(os.Stderr, "%s\n", res.Message)
		fmt.Fprintf(os.Stderr, "Overall: %d/100 (title %d, content %d, keyword %d, meta %d, readability %d) after %d attempts\n",
			res.Overall, res.Scores.Title, res.Scores.Content, res.Scores.Keyword,
			res.Scores.Meta, res.Scores.Readability, len(res.Attempts))

		if res.Status == session.StatusFailed {
			return fmt.Errorf("quality threshold not met")
		}
		return nil
	},
}

// confirm prints the prompt and reads a yes/no answer from in.
func confirm(in io.Reader, prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&genContentType, "type", "t", "blog-post", "Content type to generate")
	generateCmd.Flags().StringVarP(&genSource, "source", "s", "", "Keyword, topic prompt, or URL to generate from")
	generateCmd.Flags().StringVarP(&genInputFile, "input", "i", "", "Existing document to repurpose")
	generateCmd.Flags().StringVarP(&genOutputFile, "output", "o", "", "Output file (default stdout)")
	generateCmd.Flags().StringVarP(&genKeyword, "keyword", "k", "", "Primary keyword to optimize for")
	generateCmd.Flags().IntVarP(&genTargetWords, "words", "w", 0, "Target word count (default per content type)")
	generateCmd.Flags().StringVar(&genAudience, "audience", "", "Target audience")
	generateCmd.Flags().StringVar(&genTone, "tone", "", "Writing tone")
	generateCmd.Flags().StringVar(&genFramework, "framework", "", "Copywriting framework (AIDA, PAS, BAB, FAB, QUEST)")
	generateCmd.Flags().StringVar(&genLocale, "locale", "", "Output locale, e.g. en-US")
	generateCmd.Flags().StringVar(&genInstructions, "instructions", "", "Extra instructions for the writer")

	generateCmd.Flags().StringVar(&genProviderName, "provider", "", "Provider override (openai, ollama, mock)")
	generateCmd.Flags().StringVar(&genModel, "model", "", "Model override")
	generateCmd.Flags().StringVar(&genBaseURL, "base-url", "", "Provider base URL override")

	generateCmd.Flags().BoolVarP(&genAutoContinue, "yes", "y", false, "Continue extra iterations without asking")
	generateCmd.Flags().BoolVar(&genNoHistory, "no-history", false, "Skip writing the generation to history")
	generateCmd.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Verbose progress logging")
}
