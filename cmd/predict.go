package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/career-recommender/internal/answers"
	"github.com/spigell/career-recommender/internal/encoder"
	"github.com/spigell/career-recommender/internal/form"
	"github.com/spigell/career-recommender/internal/logger"
	"github.com/spigell/career-recommender/internal/model"
	"github.com/spigell/career-recommender/internal/recommend"
)

const (
	outputText = "text"
	outputJSON = "json"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Answer the questionnaire and print the most likely careers",
	Long:  "Answer the questionnaire and print the most likely careers.\n\n" + artifactHelp,
	Run: func(cmd *cobra.Command, _ []string) {
		predict(cmd)
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringP("answers", "a", "", "YAML or JSON file with answers. The questionnaire is asked interactively when unset.")
	predictCmd.Flags().IntP("top", "n", 0, "number of careers to print, 0 prints all (default from output.top)")
	predictCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
	predictCmd.Flags().StringP("model", "m", "", "path to the forest artifact (overrides model.path)")
	predictCmd.Flags().String("provider", "", "classifier provider: forest or gemini")

	viper.BindPFlag("output.top", predictCmd.Flags().Lookup("top"))
}

func predict(cmd *cobra.Command) {
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

	format, _ := cmd.Flags().GetString("output")
	format = strings.ToLower(strings.TrimSpace(format))
	if format != outputText && format != outputJSON {
		logger.Fatal("unsupported output format", zap.String("output", format))
	}

	logger.Info("starting the career-recommender", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	tables := encoder.Canonical()

	classifier, err := newClassifier(ctx, config, logger)
	if err != nil {
		logger.Fatal(
			"loading classifier",
			zap.Error(err),
			zap.String("hint", "set CAREER_MODEL_PATH or the 'model.path' key in the configuration file"),
		)
	}

	// Startup self-check: a classifier trained on another schema is refused here.
	predictor, err := model.NewPredictor(classifier)
	if err != nil {
		logger.Fatal("classifier does not match the feature schema", zap.Error(err))
	}

	service, err := recommend.New(&recommend.Config{Timeout: config.Model.Timeout}, &recommend.Deps{
		Encoder:   encoder.New(tables),
		Predictor: predictor,
		Logger:    logger.With(zap.String("classifier", config.Model.Provider)),
	})
	if err != nil {
		logger.Fatal("creating recommender", zap.Error(err))
	}

	answersFile, _ := cmd.Flags().GetString("answers")
	submission, err := collectAnswers(answersFile, form.New(form.Prompter{}, tables))
	if err != nil {
		if errors.Is(err, form.ErrAborted) {
			logger.Info("exiting", zap.String("reason", "questionnaire aborted"))
			return
		}
		logger.Fatal("collecting answers", zap.Error(err))
	}

	result, err := service.Recommend(ctx, submission)
	if err != nil {
		logger.Fatal("recommending a career", zap.Error(err))
	}

	if err := render(cmd.OutOrStdout(), result, config.Output.Top, format); err != nil {
		logger.Fatal("printing result", zap.Error(err))
	}
}

type questionnaire interface {
	Run() (*answers.Answers, error)
}

func collectAnswers(path string, q questionnaire) (*answers.Answers, error) {
	if strings.TrimSpace(path) != "" {
		return answers.Load(path)
	}
	return q.Run()
}

// render writes the top careers of result. top <= 0 prints every label.
func render(w io.Writer, result *recommend.Result, top int, format string) error {
	ranked := result.Top(top)

	if format == outputJSON {
		out := *result
		out.Ranked = ranked
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if result.Name != "" {
		if _, err := fmt.Fprintf(w, "Career suggestions for %s\n\n", result.Name); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, p := range ranked {
		fmt.Fprintf(tw, "%d.\t%s\t%5.1f%%\n", i+1, p.Label, p.Probability*100)
	}
	return tw.Flush()
}
