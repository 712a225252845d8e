package cmd

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/filtering"
	"github.com/spigell/cv-matcher/internal/pipeline"
)

const (
	app = "cv-matcher"
)

type Config struct {
	AI         *AIConfig         `mapstructure:"ai"`
	Pipeline   pipeline.Config   `mapstructure:"pipeline"`
	Candidates *CandidatesConfig `mapstructure:"candidates"`
}

type AIConfig struct {
	Provider string `mapstructure:"provider"`
	// RequestsPerMinute bounds calls to the provider across all batches.
	// Zero disables the budget.
	RequestsPerMinute int           `mapstructure:"requests-per-minute"`
	Burst             int           `mapstructure:"burst"`
	Gemini            *GeminiConfig `mapstructure:"gemini"`
	OpenAI            *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey       string         `mapstructure:"api-key"`
	APIKeyFile   string         `mapstructure:"api-key-file"`
	Model        string         `mapstructure:"model"`
	Temperature  float32        `mapstructure:"temperature"`
	MaxLogLength int            `mapstructure:"max-log-length"`
	Retry        ai.RetryPolicy `mapstructure:"retry"`
}

type OpenAIConfig struct {
	APIKey       string         `mapstructure:"api-key"`
	APIKeyFile   string         `mapstructure:"api-key-file"`
	BaseURL      string         `mapstructure:"base-url"`
	Model        string         `mapstructure:"model"`
	Temperature  float64        `mapstructure:"temperature"`
	MaxLogLength int            `mapstructure:"max-log-length"`
	Retry        ai.RetryPolicy `mapstructure:"retry"`
}

type CandidatesConfig struct {
	Source   string           `mapstructure:"source"`
	File     string           `mapstructure:"file"`
	Postgres *PostgresConfig  `mapstructure:"postgres"`
	Filter   filtering.Config `mapstructure:"filter"`
}

type PostgresConfig struct {
	DSN     string `mapstructure:"dsn"`
	DSNFile string `mapstructure:"dsn-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "cv-matcher ranks a candidate pool against a job description",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is cv-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for match command. If there is no config, we can skip initialization
	if matchCmd.CalledAs() == "" {
		return
	}

	// A missing .env is fine; a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix("CV_MATCHER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without an explicit --config the defaults are enough.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

// getConfig decodes the configuration over the documented defaults.
func getConfig() (*Config, error) {
	config := &Config{
		AI:       &AIConfig{Provider: ai.ProviderGemini},
		Pipeline: pipeline.DefaultConfig(),
		Candidates: &CandidatesConfig{
			Source: "file",
			Filter: filtering.DefaultConfig(),
		},
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}

	return config, nil
}
