// briefingctl parses sales briefings from the command line and,
// when asked, pushes them into the CRM.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"maqua-crm/internal/briefing"
	"maqua-crm/internal/common/config"
	"maqua-crm/internal/common/logger"
	"maqua-crm/internal/crm"
	"maqua-crm/internal/submission"
)

var (
	textFlag string
	fileFlag string
)

func main() {
	root := &cobra.Command{
		Use:           "briefingctl",
		Short:         "Parse sales briefings and push them into the CRM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&textFlag, "text", "", "briefing text (defaults to stdin)")
	root.PersistentFlags().StringVar(&fileFlag, "file", "", "read the briefing text from a file")

	root.AddCommand(newParseCustomerCmd())
	root.AddCommand(newParseOpportunityCmd())
	root.AddCommand(newSubmitCmd())
	root.AddCommand(newTasksCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newParseCustomerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-customer",
		Short: "Parse a briefing into the normalized customer record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := readBriefingText()
			if err != nil {
				return err
			}
			engine := briefing.NewEngine(briefing.DefaultOptions(), logger.NewNop())
			result, err := engine.ParseCustomer(text, true)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newParseOpportunityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-opportunity",
		Short: "Parse a briefing into the opportunity context",
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := readBriefingText()
			if err != nil {
				return err
			}
			log := logger.NewNop()
			engine := briefing.NewEngine(briefing.DefaultOptions(), log)
			parsed, err := engine.ParseCustomer(text, true)
			if err != nil {
				return err
			}
			result := briefing.NewContextBuilder(log).ParseOpportunity(text, parsed.Customer)
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newSubmitCmd() *cobra.Command {
	var skipAudit bool
	var paymentMethod string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Run the full submission pipeline against the CRM",
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := readBriefingText()
			if err != nil {
				return err
			}
			service, err := buildService()
			if err != nil {
				return err
			}
			result, err := service.Run(context.Background(), text, submission.RunOptions{
				SkipAudit:     skipAudit,
				PaymentMethod: paymentMethod,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().BoolVar(&skipAudit, "skip-audit", false, "submit the application without auditing it")
	cmd.Flags().StringVar(&paymentMethod, "payment-method", "", "override the parsed payment method")
	return cmd
}

func newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks <customer-code>",
		Short: "Create the follow-up tasks for a customer's latest opportunity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := buildService()
			if err != nil {
				return err
			}
			report, err := service.CreateTasksForCustomerCode(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
}

func buildService() (*submission.Service, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	tokens := crm.NewTokenService(cfg.CRM, log)
	client := crm.NewClient(cfg.CRM, tokens, log)
	rawText := submission.NewRawTextStore(cfg.Redis, 0, log)
	return submission.NewService(cfg, client, rawText, log), nil
}

func readBriefingText() (string, error) {
	if textFlag != "" {
		return textFlag, nil
	}
	if fileFlag != "" {
		data, err := os.ReadFile(fileFlag)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", fileFlag, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("no briefing text: pass --text, --file or pipe to stdin")
	}
	return text, nil
}

func printJSON(w io.Writer, value interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}
