package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guardrail-labs/sentinel/internal/core"
)

var (
	processToken   string
	processSignals []string
	processJSON    bool
	processTrace   bool
)

var processCmd = &cobra.Command{
	Use:   "process [text]",
	Short: "Run one interaction request through the pipeline",
	Long: `Process authenticates the given token, runs the request text through
the risk gate and analyzer fan-out, and prints the synthesized response.
When the text argument is omitted, the request body is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processToken, "token", "",
		"ingress credential token (required)")
	processCmd.Flags().StringArrayVar(&processSignals, "signal", nil,
		"structured signal as key=value (repeatable)")
	processCmd.Flags().BoolVar(&processJSON, "json", false,
		"print the full response as JSON")
	processCmd.Flags().BoolVar(&processTrace, "trace", false,
		"print stage events as they occur")
	_ = processCmd.MarkFlagRequired("token")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	text, err := requestText(cmd, args)
	if err != nil {
		return err
	}

	signals, err := parseSignals(processSignals)
	if err != nil {
		return err
	}

	application, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	var traceDone chan struct{}
	if processTrace {
		events := application.bus.Subscribe()
		traceDone = make(chan struct{})
		go func() {
			defer close(traceDone)
			for ev := range events {
				fmt.Fprintf(cmd.ErrOrStderr(), "  [%s] %s: %s\n",
					ev.Stage, ev.Outcome, ev.Summary)
			}
		}()
	}

	resp, err := application.pipeline.Process(cmd.Context(),
		core.Credentials{Token: processToken},
		core.Payload{Text: text, Signals: signals},
	)

	if processTrace {
		application.bus.Close()
		<-traceDone
	}
	if err != nil {
		return err
	}

	return printResponse(cmd.OutOrStdout(), resp)
}

func requestText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading request from stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("empty request: pass text as an argument or on stdin")
	}
	return text, nil
}

func parseSignals(pairs []string) (map[string]interface{}, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	signals := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid signal %q: expected key=value", pair)
		}
		signals[key] = value
	}
	return signals, nil
}

func printResponse(w io.Writer, resp *core.Response) error {
	if processJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Fprintln(w, resp.Text)
	if len(resp.Disclosures) > 0 {
		fmt.Fprintln(w)
		for _, d := range resp.Disclosures {
			fmt.Fprintf(w, "  %s\n", d)
		}
	}
	if quiet {
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "severity:   %s\n", resp.Assessment.OverallSeverity)
	fmt.Fprintf(w, "confidence: %.2f\n", resp.Assessment.OverallConfidence)
	fmt.Fprintf(w, "escalation: %s\n", resp.Decision.Level)
	if resp.Degraded {
		fmt.Fprintln(w, "degraded:   analysis ran on incomplete data")
	}
	return nil
}
