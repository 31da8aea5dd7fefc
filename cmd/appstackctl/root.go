package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/PratikDhanave/appstack-bridge/internal/channelclient"
	"github.com/PratikDhanave/appstack-bridge/internal/methodchannel"
)

type globalOptions struct {
	server   string
	platform string
	token    string
	verbose  bool
	retries  int
	timeout  time.Duration
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "appstackctl",
		Short:         "Send method calls to the Appstack bridge",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose {
				log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
			} else {
				log.Logger = zerolog.Nop()
			}
			return nil
		},
	}

	addGlobalFlags(rootCmd.PersistentFlags(), opts)

	rootCmd.AddCommand(
		configureCmd(opts, out),
		sendEventCmd(opts, out),
		enableAppleAdsCmd(opts, out),
		appstackIDCmd(opts, out),
		sdkDisabledCmd(opts, out),
		callCmd(opts, out),
	)
	return rootCmd
}

func addGlobalFlags(flags *pflag.FlagSet, opts *globalOptions) {
	flags.StringVar(&opts.server, "server", envOr("APPSTACK_BRIDGE_URL", "http://localhost:8080"),
		"Bridge base URL (env APPSTACK_BRIDGE_URL)")
	flags.StringVar(&opts.platform, "platform", "ios", "Platform channel: android, ios or ios_legacy")
	flags.StringVar(&opts.token, "token", os.Getenv("APPSTACK_BRIDGE_TOKEN"),
		"X-API-Key presented to the bridge (env APPSTACK_BRIDGE_TOKEN)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging to console")
	flags.IntVar(&opts.retries, "retries", 2, "Retries for transport failures and 5xx replies")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Per-request timeout")
}

func (o *globalOptions) client() (*channelclient.Client, error) {
	logger := log.Logger
	return channelclient.New(channelclient.Options{
		BaseURL:  o.server,
		Platform: o.platform,
		Token:    o.token,
		RetryMax: o.retries,
		Timeout:  o.timeout,
		Logger:   &logger,
	})
}

// printReply writes value as indented JSON. Error envelopes are printed too
// and returned so the process exits non-zero.
func printReply(out io.Writer, value any, err error) error {
	var me *methodchannel.Error
	switch {
	case err == nil:
	case errors.As(err, &me):
		value = map[string]any{"code": me.Code, "message": me.Message, "details": me.Details}
	case channelclient.IsNotImplemented(err):
		return errors.New("method not implemented on this platform")
	default:
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(value); encErr != nil {
		return encErr
	}
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
