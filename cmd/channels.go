package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"slackdigest/internal/config"
	slackclient "slackdigest/internal/slack"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List the channels visible to SLACK_TOKEN",
	Long:  `List public and private channels the token can see, with the IDs to use for SLACK_CHANNEL_ID.`,
	Args:  cobra.NoArgs,
	RunE:  runChannels,
}

func runChannels(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadSlack(envFiles...)
	if err != nil {
		logger.Error("Failed to load configuration", zap.Error(err))
		return err
	}

	api := slackclient.NewClient(cfg.SlackToken, cfg.SlackAPIURL)
	if err := slackclient.ListChannels(cmd.Context(), api, cmd.OutOrStdout(), logger); err != nil {
		logger.Error("Failed to list channels", zap.Error(err))
		return err
	}
	return nil
}
