package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/acornak/healthcare-chatbot/internal/chatclient"
	"github.com/acornak/healthcare-chatbot/internal/presentation"
	"github.com/acornak/healthcare-chatbot/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "chat is a terminal client for the healthcare chatbot",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		url := viper.GetString("url")
		client := chatclient.New(url, viper.GetDuration("timeout"))

		log.Info().
			Str("url", url).
			Bool("history", viper.GetBool("history")).
			Msg("Starting chat")

		model := tui.New(client, tui.Options{
			SendHistory:   viper.GetBool("history"),
			MarkdownStyle: viper.GetString("style"),
		})
		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("chat window failed: %w", err)
		}
		return nil
	},
}

// initLogger sends logs to --log-file; the terminal belongs to the chat window
func initLogger() error {
	var w io.Writer = io.Discard
	if path := viper.GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
	}

	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}

func initConfig(cmd *cobra.Command) error {
	viper.SetEnvPrefix("chatbot")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	return viper.BindPFlags(cmd.PersistentFlags())
}

func main() {
	flags := rootCmd.PersistentFlags()
	flags.String("url", "http://localhost:3000/api/chatbot", "chatbot endpoint")
	flags.Bool("history", true, "send earlier exchanges with every message")
	flags.Duration("timeout", 2*time.Minute, "request timeout")
	flags.String("style", presentation.DefaultStyle, "glamour style for answers (dark, light, notty)")
	flags.String("log-file", "", "write logs to this file")
	flags.String("log-level", "info", "log level")

	cobra.CheckErr(initConfig(rootCmd))
	cobra.CheckErr(rootCmd.Execute())
}
