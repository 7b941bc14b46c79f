package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"slackdigest/internal/config"
	"slackdigest/internal/notify"
	"slackdigest/internal/openai"
	"slackdigest/internal/pipeline"
	slackclient "slackdigest/internal/slack"
)

var (
	envFiles    []string
	jsonLogs    bool
	fromDate    string
	toDate      string
	skipSummary bool
)

var rootCmd = &cobra.Command{
	Use:   "slackdigest",
	Short: "Export a Slack channel's monthly history to CSV and summarize it",
	Long: `slackdigest fetches a channel's message history for a date range, groups it
by UTC calendar day, writes it to a DATE,MESSAGE CSV file and asks a
text-completion model for a monthly summary of your own messages.

Without --from/--to the current month is exported.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDigest,
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv file(s) to load before reading the environment (default .env)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit production JSON logs instead of development console logs")

	rootCmd.Flags().StringVar(&fromDate, "from", "", "first day to export, YYYY-MM-DD (default: first day of the current month)")
	rootCmd.Flags().StringVar(&toDate, "to", "", "last day to export, YYYY-MM-DD (default: last day of the current month)")
	rootCmd.Flags().BoolVar(&skipSummary, "skip-summary", false, "only write the CSV file")

	rootCmd.AddCommand(channelsCmd)
}

func newLogger() (*zap.Logger, error) {
	if jsonLogs {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func runDigest(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(envFiles...)
	if err != nil {
		logger.Error("Failed to load configuration", zap.Error(err))
		return err
	}

	fetcher := slackclient.NewFetcher(
		slackclient.NewClient(cfg.SlackToken, cfg.SlackAPIURL),
		slackclient.WithPageInterval(cfg.PageInterval),
		slackclient.WithLocation(cfg.Location),
		slackclient.WithLogger(logger),
	)

	var summarizer pipeline.SummaryGenerator
	if !skipSummary {
		summarizer = openai.NewSummarizer(
			openai.NewClient(cfg.OpenAIToken, cfg.OpenAIBaseURL),
			cfg.OpenAIModel,
			cfg.SummaryMaxTokens,
			logger,
		)
	}

	mailer := notify.NewMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
		To:       cfg.EmailTo,
	}, logger)

	result, err := pipeline.New(fetcher, summarizer, mailer, logger).Run(cmd.Context(), pipeline.Options{
		ChannelID:       cfg.ChannelID,
		StartDate:       fromDate,
		EndDate:         toDate,
		SelfUserID:      cfg.SelfUserID,
		Prefix:          cfg.MessagePrefix,
		CSVPath:         cfg.CSVPath,
		SummaryPath:     cfg.SummaryPath,
		SummaryHTMLPath: cfg.SummaryHTMLPath,
		SkipSummary:     skipSummary,
	})
	if err != nil {
		return err
	}

	logger.Info("Run finished",
		zap.Int("messages", result.Messages),
		zap.Int("dates", result.Dates),
		zap.String("csv", result.CSVPath),
		zap.String("summary", result.SummaryPath),
		zap.Bool("emailed", result.Emailed),
		zap.NamedError("summary_error", result.SummaryErr))
	return nil
}
