package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/career-recommender/internal/encoder"
	"github.com/spigell/career-recommender/internal/logger"
	"github.com/spigell/career-recommender/internal/model"
	"github.com/spigell/career-recommender/internal/model/forest"
	"github.com/spigell/career-recommender/internal/model/gemini"
	"github.com/spigell/career-recommender/internal/secrets"
)

const (
	providerForest = "forest"
	providerGemini = "gemini"

	geminiKeyEnv = "GEMINI_API_KEY"
)

const artifactHelp = `The forest provider reads a JSON artifact in the random-forest/v1 format
from model.path (or CAREER_MODEL_PATH). A fitted scikit-learn
RandomForestClassifier is exported by walking each estimator's tree_:
every internal node becomes {"feature", "threshold", "left", "right"}
with children_left/children_right as indexes, and every leaf becomes
{"value"} holding tree_.value[node][0]. classes must list the 12 careers
in the order of the classifier's classes_, and feature_names the 19
training columns.`

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect the configured classifier",
}

var modelCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the classifier and verify its features and labels",
	Long:  "Load the classifier and verify its features and labels.\n\n" + artifactHelp,
	Run: func(cmd *cobra.Command, _ []string) {
		checkModel(cmd)
	},
}

func init() {
	rootCmd.AddCommand(modelCmd)
	modelCmd.AddCommand(modelCheckCmd)

	modelCmd.PersistentFlags().StringP("model", "m", "", "path to the forest artifact (overrides model.path)")
	modelCmd.PersistentFlags().String("provider", "", "classifier provider: forest or gemini")
}

func checkModel(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	applyModelFlags(cmd, config)

	classifier, err := newClassifier(ctx, config, logger)
	if err != nil {
		logger.Fatal("loading classifier", zap.Error(err))
	}

	if err := model.CheckSchema(classifier); err != nil {
		logger.Fatal("classifier does not match the feature schema", zap.Error(err))
	}

	fields := []zap.Field{
		zap.Int("features", classifier.NumFeatures()),
		zap.Int("classes", len(classifier.Classes())),
	}
	if f, ok := classifier.(*forest.Forest); ok {
		fields = append(fields, zap.Int("trees", f.NumTrees()))
	}
	logger.Info("classifier is compatible", fields...)
}

// applyModelFlags lets command flags win over config and env.
func applyModelFlags(cmd *cobra.Command, config *Config) {
	if path, _ := cmd.Flags().GetString("model"); path != "" {
		config.Model.Path = path
	}
	if provider, _ := cmd.Flags().GetString("provider"); provider != "" {
		config.Model.Provider = provider
	}
}

// newClassifier builds the configured backend. The returned classifier has
// not been schema checked yet.
func newClassifier(ctx context.Context, config *Config, base *zap.Logger) (model.Classifier, error) {
	provider := strings.TrimSpace(strings.ToLower(config.Model.Provider))

	switch provider {
	case "", providerForest:
		path := strings.TrimSpace(config.Model.Path)
		if path == "" {
			return nil, fmt.Errorf("model.path is required for the %s provider (or set CAREER_MODEL_PATH)", providerForest)
		}

		f, err := forest.Load(path)
		if err != nil {
			return nil, err
		}

		logger.WithClassifier(base, providerForest, path).Debug("forest loaded", zap.Int("trees", f.NumTrees()))
		return f, nil

	case providerGemini:
		return newGeminiClassifier(ctx, config.Gemini, base)

	default:
		return nil, fmt.Errorf("unsupported model provider: %s", config.Model.Provider)
	}
}

// geminiKeySource prefers the key file, then GEMINI_API_KEY, then the inline
// gemini.api-key value.
func geminiKeySource(cfg *GeminiConfig) secrets.Source {
	return secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		Env:   geminiKeyEnv,
		File:  cfg.APIKeyFile,
	}
}

func newGeminiClassifier(ctx context.Context, cfg *GeminiConfig, base *zap.Logger) (model.Classifier, error) {
	apiKey, err := secrets.Load(geminiKeySource(cfg))
	if err != nil {
		return nil, fmt.Errorf("%w (set gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithClassifier(base, providerGemini, cfg.Model).With(
		zap.Int("ai_retry_attempts", cfg.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	classifierLogger := logger.WithClassifier(base, providerGemini, generator.Model())

	return gemini.NewClassifier(generator, encoder.Canonical(), classifierLogger, cfg.MaxLogLength), nil
}
