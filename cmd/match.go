package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/ai/gemini"
	"github.com/spigell/cv-matcher/internal/ai/openai"
	"github.com/spigell/cv-matcher/internal/candidates"
	"github.com/spigell/cv-matcher/internal/logger"
	"github.com/spigell/cv-matcher/internal/matching"
	"github.com/spigell/cv-matcher/internal/pipeline"
	"github.com/spigell/cv-matcher/internal/secrets"
)

const (
	PromptSummary    = "Summary"
	PromptDetails    = "Candidate details"
	PromptDumpToFile = "Dump result to file"
	PromptExit       = "Exit"
	PromptBack       = "back"

	defaultMaxResults = 10
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptSummary, PromptDetails, PromptDumpToFile, PromptExit},
}

// weightFlags maps flag names onto the weight they override.
var weightFlags = map[string]func(*matching.PartialWeights, *float64){
	"skills-weight":     func(p *matching.PartialWeights, v *float64) { p.Skills = v },
	"experience-weight": func(p *matching.PartialWeights, v *float64) { p.Experience = v },
	"location-weight":   func(p *matching.PartialWeights, v *float64) { p.Location = v },
	"seniority-weight":  func(p *matching.PartialWeights, v *float64) { p.Seniority = v },
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank the candidate pool against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("job", "J", "", "file with the job description (required)")
	matchCmd.Flags().StringP("candidates", "c", "", "JSON file with the candidate pool. Overrides candidates.source")
	matchCmd.Flags().IntP("max-results", "n", defaultMaxResults, "how many candidates to analyse and return")
	matchCmd.Flags().StringP("output", "o", "", "file for the JSON result. Default is stdout with -y, a temp file otherwise")
	matchCmd.Flags().BoolP("auto-approve", "y", false, "print the result as JSON without the interactive menu")
	matchCmd.Flags().StringSlice("disable-filter", nil, "skip a candidate filter (location, sector, min_experience)")
	for name := range weightFlags {
		matchCmd.Flags().Float64(name, 0, "override the "+strings.TrimSuffix(name, "-weight")+" weight")
	}

	matchCmd.MarkFlagRequired("job")
}

// match is the main command for the cli.
func match(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the cv-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config.Pipeline, "", "  ")
	logger.Debug(fmt.Sprintf("starting with pipeline config: \n %s", pretty))

	jobFile, _ := cmd.Flags().GetString("job")
	job, err := os.ReadFile(jobFile)
	if err != nil {
		logger.Fatal("reading the job description", zap.Error(err))
	}

	req, err := requestFromFlags(cmd, string(job))
	if err != nil {
		logger.Fatal("parsing flags", zap.Error(err))
	}

	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building ai generator", zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or OPENAI_API_KEY, or the api-key-file key under ai.<provider>"))
	}

	source, closeSource, err := newSource(ctx, cmd, config.Candidates, logger)
	if err != nil {
		logger.Fatal("opening candidate source", zap.Error(err))
	}
	defer closeSource()

	disabled, _ := cmd.Flags().GetStringSlice("disable-filter")
	config.Candidates.Filter.Disabled = append(config.Candidates.Filter.Disabled, disabled...)

	pool, err := source.Load(ctx, config.Candidates.Filter)
	if err != nil {
		logger.Fatal("loading candidates", zap.Error(err))
	}

	if len(pool) == 0 {
		logger.Info("exiting", zap.String("reason", "no candidates found"))
		return
	}

	if n := providerMaxLogLength(config.AI); n > 0 && !viper.IsSet("pipeline.max-log-length") {
		config.Pipeline.MaxLogLength = n
	}

	orchestrator, err := pipeline.New(generator, config.Pipeline, logger)
	if err != nil {
		logger.Fatal("invalid pipeline config", zap.Error(err))
	}

	result, err := orchestrator.Handle(ctx, pool, req)
	if err != nil {
		problem := pipeline.Describe(err)
		logger.Fatal("matching failed",
			zap.String("kind", string(problem.Kind)),
			zap.Int("status", problem.Status),
			zap.Bool("retryable", problem.Retryable),
			zap.String("hint", problem.Message),
			zap.Error(err),
		)
	}

	output, _ := cmd.Flags().GetString("output")
	if auto, _ := cmd.Flags().GetBool("auto-approve"); auto {
		if err := writeResult(output, os.Stdout, result); err != nil {
			logger.Fatal("writing result", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, output, result); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, output string, result matching.PipelineResult) error {
	switch action {
	case PromptSummary:
		printSummary(os.Stdout, result)
		return nil
	case PromptDetails:
		return browseMatches(result)
	case PromptDumpToFile:
		filename, err := dumpToFile(output, result)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func browseMatches(result matching.PipelineResult) error {
	for {
		items := make([]string, 0, len(result.Matches)+1)
		for i, m := range result.Matches {
			items = append(items, matchLabel(i, m))
		}

		matchPrompt := promptui.Select{
			Label: "Choose a candidate and press ENTER",
			Items: append(items, PromptBack),
		}

		idx, selected, err := matchPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		pretty, err := json.MarshalIndent(result.Matches[idx], "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(pretty))
	}
}

func matchLabel(i int, m matching.EnrichedMatchResult) string {
	name := m.CandidateName
	if name == "" {
		name = "-"
	}
	aiScore := "-"
	if m.AIScore != nil {
		aiScore = fmt.Sprintf("%.0f", *m.AIScore)
	}
	return fmt.Sprintf("%2d. %s %s / final %.1f / algorithmic %.1f / ai %s",
		i+1, m.CandidateID, name, m.FinalScore, m.AlgorithmicScore, aiScore)
}

func printSummary(w io.Writer, result matching.PipelineResult) {
	req := result.ParsedRequirements
	s := result.Stats

	fmt.Fprintf(w, "Role: %s\n", req.Title)
	fmt.Fprintf(w, "Must have: %s\n", strings.Join(req.MustHaveSkills, ", "))
	if len(req.NiceToHaveSkills) > 0 {
		fmt.Fprintf(w, "Nice to have: %s\n", strings.Join(req.NiceToHaveSkills, ", "))
	}
	fmt.Fprintf(w, "Candidates: %d total, %d pre-screened, %d requested, %d analysed in %dms\n",
		s.TotalCandidates, s.PreScreenedCount, s.RequestedAnalysisCount, s.AIAnalyzedCount, s.ProcessingTimeMs)
	if s.Partial() {
		fmt.Fprintf(w, "Warning: %d candidate(s) could not be analysed and are not listed\n", s.FailedAnalysisCount)
	}
	for i, m := range result.Matches {
		fmt.Fprintln(w, matchLabel(i, m))
	}
}

func writeResult(output string, stdout io.Writer, result matching.PipelineResult) error {
	if output == "" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	_, err := dumpToFile(output, result)
	return err
}

// dumpToFile writes result to path, or to a new temp file when path is empty.
func dumpToFile(path string, result matching.PipelineResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}

	if path == "" {
		f, err := os.CreateTemp("", app+"-*.json")
		if err != nil {
			return "", err
		}
		defer f.Close()

		if _, err := f.Write(data); err != nil {
			return "", err
		}
		return f.Name(), nil
	}

	return path, os.WriteFile(path, data, 0o644)
}

func requestFromFlags(cmd *cobra.Command, job string) (pipeline.Request, error) {
	maxResults, err := cmd.Flags().GetInt("max-results")
	if err != nil {
		return pipeline.Request{}, err
	}

	req := pipeline.Request{JobDescription: job, MaxResults: maxResults}
	for name, set := range weightFlags {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, err := cmd.Flags().GetFloat64(name)
		if err != nil {
			return pipeline.Request{}, err
		}
		set(&req.Weights, &v)
	}
	return req, nil
}

func newGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Generator, error) {
	if cfg == nil {
		return nil, errors.New("ai configuration is required")
	}

	budget := ai.NewBudget(cfg.RequestsPerMinute, cfg.Burst)
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case "", ai.ProviderGemini:
		g := cfg.Gemini
		if g == nil {
			g = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: g.APIKey,
			File:  g.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, err
		}

		return gemini.NewGenerator(ctx, gemini.Config{
			APIKey:       apiKey,
			Model:        g.Model,
			Temperature:  g.Temperature,
			Retry:        g.Retry,
			MaxLogLength: g.MaxLogLength,
		}, budget, log)
	case ai.ProviderOpenAI:
		o := cfg.OpenAI
		if o == nil {
			o = &OpenAIConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: o.APIKey,
			File:  o.APIKeyFile,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, err
		}

		return openai.NewGenerator(openai.Config{
			APIKey:       apiKey,
			BaseURL:      o.BaseURL,
			Model:        o.Model,
			Temperature:  o.Temperature,
			Retry:        o.Retry,
			MaxLogLength: o.MaxLogLength,
		}, budget, log)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

// providerMaxLogLength returns the max-log-length of the selected provider,
// zero when unset.
func providerMaxLogLength(cfg *AIConfig) int {
	if cfg == nil {
		return 0
	}
	switch strings.TrimSpace(strings.ToLower(cfg.Provider)) {
	case "", ai.ProviderGemini:
		if cfg.Gemini != nil {
			return cfg.Gemini.MaxLogLength
		}
	case ai.ProviderOpenAI:
		if cfg.OpenAI != nil {
			return cfg.OpenAI.MaxLogLength
		}
	}
	return 0
}

func newSource(ctx context.Context, cmd *cobra.Command, cfg *CandidatesConfig, log *zap.Logger) (candidates.Source, func(), error) {
	noop := func() {}

	if file, _ := cmd.Flags().GetString("candidates"); file != "" {
		return candidates.NewFile(file, log), noop, nil
	}
	if cfg == nil {
		return nil, noop, errors.New("candidates configuration is required")
	}

	switch strings.TrimSpace(strings.ToLower(cfg.Source)) {
	case "", candidates.KindFile:
		if strings.TrimSpace(cfg.File) == "" {
			return nil, noop, errors.New("candidates.file or --candidates is required for the file source")
		}
		return candidates.NewFile(cfg.File, log), noop, nil
	case candidates.KindPostgres:
		pg := cfg.Postgres
		if pg == nil {
			pg = &PostgresConfig{}
		}

		dsn, err := secrets.Load(secrets.Source{
			Name:  "postgres dsn",
			Value: pg.DSN,
			File:  pg.DSNFile,
			Env:   "CV_MATCHER_POSTGRES_DSN",
		})
		if err != nil {
			return nil, noop, err
		}

		store, err := candidates.Connect(ctx, dsn, log)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unsupported candidates source: %s", cfg.Source)
	}
}
