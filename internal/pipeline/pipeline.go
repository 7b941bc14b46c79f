// Package pipeline sequences fetch, organize and export for one run.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"slackdigest/internal/commontypes"
	"slackdigest/internal/export"
	"slackdigest/internal/organizer"
)

// HistoryFetcher returns a channel's messages for a date range.
type HistoryFetcher interface {
	Fetch(ctx context.Context, channelID, startDate, endDate string) ([]commontypes.Message, error)
}

// SummaryGenerator produces a natural-language summary of organized messages.
type SummaryGenerator interface {
	Summarize(ctx context.Context, grouped *commontypes.MessagesByDate) (string, error)
}

// Notifier delivers the summary somewhere outside the output files.
type Notifier interface {
	Enabled() bool
	Send(subject, body string) error
}

// Options select what a run reads and writes.
type Options struct {
	ChannelID  string
	StartDate  string // YYYY-MM-DD, empty for the current month
	EndDate    string
	SelfUserID string
	Prefix     string

	CSVPath         string
	SummaryPath     string
	SummaryHTMLPath string // empty disables the HTML rendering

	SkipSummary bool
}

// Result records the outcome of every stage of a run.
type Result struct {
	Messages int
	Dates    int
	CSVPath  string

	SummaryPath     string // set only when the summary file was written
	SummaryHTMLPath string
	Emailed         bool

	// SummaryErr is the first failure of the summary stages. Those
	// failures never fail the run.
	SummaryErr error
}

// Runner wires the stages together.
type Runner struct {
	fetcher    HistoryFetcher
	summarizer SummaryGenerator
	notifier   Notifier
	logger     *zap.Logger
}

// New constructs a Runner. summarizer and notifier may be nil.
func New(fetcher HistoryFetcher, summarizer SummaryGenerator, notifier Notifier, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{fetcher: fetcher, summarizer: summarizer, notifier: notifier, logger: logger}
}

// Run fetches, organizes and exports. A fetch or CSV failure is returned
// and stops the run; summary failures are logged and kept in Result.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	r.logger.Info("Start fetching messages from slack channel", zap.String("channel_id", opts.ChannelID))
	messages, err := r.fetcher.Fetch(ctx, opts.ChannelID, opts.StartDate, opts.EndDate)
	if err != nil {
		r.logger.Error("Error while fetching remote messages", zap.Error(err))
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	r.logger.Info("Found messages in channel", zap.Int("count", len(messages)))

	grouped := organizer.Organize(messages, opts.SelfUserID, opts.Prefix)
	result := &Result{Messages: len(messages), Dates: len(grouped.Dates())}

	if err := export.WriteCSV(opts.CSVPath, grouped); err != nil {
		r.logger.Error("Failed to write CSV", zap.String("path", opts.CSVPath), zap.Error(err))
		return result, fmt.Errorf("export csv: %w", err)
	}
	result.CSVPath = opts.CSVPath
	r.logger.Info("The CSV file was written successfully",
		zap.String("path", opts.CSVPath),
		zap.Int("records", grouped.Len()))

	if opts.SkipSummary || r.summarizer == nil {
		r.logger.Info("Summary generation skipped")
		return result, nil
	}
	r.summarize(ctx, opts, grouped, result)
	return result, nil
}

func (r *Runner) summarize(ctx context.Context, opts Options, grouped *commontypes.MessagesByDate, result *Result) {
	summary, err := r.summarizer.Summarize(ctx, grouped)
	if err != nil {
		r.logger.Error("Failed to fetch summary", zap.Error(err))
		result.SummaryErr = err
		return
	}
	if summary == "" {
		r.logger.Warn("Summary is empty, nothing to save")
		return
	}

	if err := export.WriteSummary(opts.SummaryPath, summary); err != nil {
		r.logger.Error("Failed to write summary to file", zap.String("path", opts.SummaryPath), zap.Error(err))
		keepFirst(result, err)
	} else {
		result.SummaryPath = opts.SummaryPath
		r.logger.Info("Monthly summary saved successfully", zap.String("path", opts.SummaryPath))
	}

	title := fmt.Sprintf("Slack Channel Summary - %s", opts.ChannelID)
	if opts.SummaryHTMLPath != "" {
		if err := export.WriteSummaryHTML(opts.SummaryHTMLPath, title, summary); err != nil {
			r.logger.Error("Failed to write HTML summary", zap.String("path", opts.SummaryHTMLPath), zap.Error(err))
			keepFirst(result, err)
		} else {
			result.SummaryHTMLPath = opts.SummaryHTMLPath
		}
	}

	if r.notifier != nil && r.notifier.Enabled() {
		if err := r.notifier.Send(title, summary); err != nil {
			r.logger.Error("Failed to send email", zap.Error(err))
			keepFirst(result, err)
		} else {
			result.Emailed = true
		}
	}
}

func keepFirst(result *Result, err error) {
	if result.SummaryErr == nil {
		result.SummaryErr = err
	}
}
