package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/uapibot/uapibot/internal/format"
	"github.com/uapibot/uapibot/internal/uapi"
)

func newLookupCmd() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Run a one-shot lookup against the Uapi service",
	}

	cmd.PersistentFlags().StringVar(&baseURL, "base-url", uapi.DefaultBaseURL, "Uapi base URL")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", uapi.DefaultTimeout, "request timeout")

	cmd.AddCommand(&cobra.Command{
		Use:   "whois <domain>",
		Short: "Look up WHOIS registration data for a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := uapi.NewClient(baseURL, timeout)
			result, err := client.Whois(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("whois lookup: %w", err)
			}
			title, sections := format.Whois(args[0], result)
			fmt.Println(title)
			for _, section := range sections {
				fmt.Println()
				fmt.Println(section)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "dns <domain> [record-type]",
		Short: "Resolve DNS records for a domain",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordType := "A"
			if len(args) > 1 {
				recordType = strings.ToUpper(args[1])
			}
			client := uapi.NewClient(baseURL, timeout)
			result, err := client.DNS(cmd.Context(), args[0], recordType)
			if err != nil {
				return fmt.Errorf("dns lookup: %w", err)
			}
			fmt.Println(format.DNS(args[0], recordType, result))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ping <host>",
		Short: "Check whether a host is reachable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := uapi.NewClient(baseURL, timeout)
			result, err := client.Ping(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			fmt.Println(format.Ping(args[0], result))
			return nil
		},
	})

	return cmd
}
