package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/PratikDhanave/appstack-bridge/internal/attribution"
	"github.com/PratikDhanave/appstack-bridge/internal/channelclient"
)

func configureCmd(opts *globalOptions, out io.Writer) *cobra.Command {
	var (
		args     channelclient.ConfigureArgs
		logLevel int
	)
	cmd := &cobra.Command{
		Use:   "configure <api-key>",
		Short: "Initialise the SDK with an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, pos []string) error {
			args.APIKey = pos[0]
			if cmd.Flags().Changed("log-level") {
				args.LogLevel = &logLevel
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			ok, err := c.Configure(cmd.Context(), args)
			return printReply(out, ok, err)
		},
	}
	cmd.Flags().BoolVar(&args.IsDebug, "debug", false, "Enable SDK debug mode")
	cmd.Flags().StringVar(&args.EndpointBaseURL, "endpoint", "", "Override the SDK endpoint base URL")
	cmd.Flags().IntVar(&logLevel, "log-level", 1, "Numeric SDK log level")
	return cmd
}

func sendEventCmd(opts *globalOptions, out io.Writer) *cobra.Command {
	var (
		args    channelclient.EventArgs
		revenue float64
		params  string
	)
	cmd := &cobra.Command{
		Use:   "send-event <event-type>",
		Short: "Send an attribution event",
		Long:  fmt.Sprintf("Send an attribution event. Known types: %v", attribution.EventTypes()),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, pos []string) error {
			args.EventType = pos[0]
			if cmd.Flags().Changed("revenue") {
				args.Revenue = &revenue
			}
			if params != "" {
				if err := json.Unmarshal([]byte(params), &args.Parameters); err != nil {
					return fmt.Errorf("--params must be a JSON object: %w", err)
				}
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			ok, err := c.SendEvent(cmd.Context(), args)
			return printReply(out, ok, err)
		},
	}
	cmd.Flags().StringVar(&args.EventName, "name", "", "Optional event name, e.g. the name of a CUSTOM event")
	cmd.Flags().Float64Var(&revenue, "revenue", 0, "Revenue amount (forwarded by android and ios_legacy)")
	cmd.Flags().StringVar(&params, "params", "", `Event parameters as a JSON object, forwarded by ios, e.g. '{"sku":"a1","currency":"EUR"}'`)
	return cmd
}

func enableAppleAdsCmd(opts *globalOptions, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "enable-apple-ads",
		Short: "Enable Apple Search Ads attribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			ok, err := c.EnableAppleAdsAttribution(cmd.Context())
			return printReply(out, ok, err)
		},
	}
}

func appstackIDCmd(opts *globalOptions, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "appstack-id",
		Short: "Print the Appstack identifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			id, err := c.AppstackID(cmd.Context())
			return printReply(out, id, err)
		},
	}
}

func sdkDisabledCmd(opts *globalOptions, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "sdk-disabled",
		Short: "Report whether the SDK is disabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			disabled, err := c.IsSDKDisabled(cmd.Context())
			return printReply(out, disabled, err)
		},
	}
}

func callCmd(opts *globalOptions, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "call <method> [json-args]",
		Short: "Send a raw method call",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, pos []string) error {
			var args map[string]any
			if len(pos) == 2 {
				if err := json.Unmarshal([]byte(pos[1]), &args); err != nil {
					return fmt.Errorf("arguments must be a JSON object: %w", err)
				}
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			v, err := c.Invoke(cmd.Context(), pos[0], args)
			return printReply(out, v, err)
		},
	}
}
