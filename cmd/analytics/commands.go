package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/analytics"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/api/middleware"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/api/request"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/config"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/validation"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/version"
)

// options are the flags shared by every subcommand.
type options struct {
	input  string
	pretty bool
}

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "analytics",
		Short: "Trading analytics over JSON input files",
		Long: `Computes performance metrics, risk, return attribution and benchmark
comparisons for one agent. Each subcommand reads the same JSON body the HTTP
API accepts, from --input or stdin, and prints the result as JSON.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.input, "input", "i", "-", "Input JSON file (- for stdin)")
	rootCmd.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "Indent JSON output")

	rootCmd.AddCommand(newPerformanceCmd(opts))
	rootCmd.AddCommand(newRiskCmd(opts))
	rootCmd.AddCommand(newAttributionCmd(opts))
	rootCmd.AddCommand(newBenchmarkCmd(opts))
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newPerformanceCmd(opts *options) *cobra.Command {
	var omegaThreshold float64

	cmd := &cobra.Command{
		Use:   "performance",
		Short: "Compute performance metrics from closed trades",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req request.PerformanceRequest
			if err := readInput(cmd, opts, &req); err != nil {
				return err
			}
			period, err := model.ParseReportingPeriod(req.Period)
			if err != nil {
				return err
			}
			metrics := analytics.CalculatePerformanceWithThreshold(request.Trades(req.Trades), period, omegaThreshold)
			return writeOutput(cmd.OutOrStdout(), opts, metrics)
		},
	}

	cmd.Flags().Float64Var(&omegaThreshold, "omega-threshold", analytics.DefaultOmegaThreshold, "Return threshold for the Omega ratio")
	return cmd
}

func newRiskCmd(opts *options) *cobra.Command {
	var (
		scenarioFile string
		conditioned  bool
		confidence   float64
	)

	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Assess the risk of a portfolio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req request.RiskRequest
			if err := readInput(cmd, opts, &req); err != nil {
				return err
			}
			if cmd.Flags().Changed("confidence") {
				req.Confidence = confidence
			}
			if req.Confidence == 0 {
				req.Confidence = analytics.DefaultConfidence
			}

			var provider analytics.StressScenarioProvider = analytics.DefaultStressScenarios()
			if scenarioFile != "" {
				scenarios, err := analytics.LoadScenarioFile(scenarioFile)
				if err != nil {
					return err
				}
				provider = scenarios
			}
			if conditioned {
				provider = analytics.PortfolioConditionedScenarios{Base: provider}
			}
			assessor := analytics.NewRiskAssessor(analytics.WithStressScenarios(provider))

			portfolio := request.Portfolio(req.Holdings)
			history := request.PriceHistory(req.Prices)

			var (
				risk model.RiskMetrics
				err  error
			)
			if len(req.Benchmark) > 0 {
				risk, err = assessor.AssessAgainstBenchmark(portfolio, history, req.Benchmark, req.Confidence)
			} else {
				risk, err = assessor.Assess(portfolio, history, req.Confidence)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts, risk)
		},
	}

	cmd.Flags().StringVar(&scenarioFile, "scenarios", "", "YAML stress scenario file")
	cmd.Flags().BoolVar(&conditioned, "conditioned", false, "Scale scenario losses by holding concentration")
	cmd.Flags().Float64Var(&confidence, "confidence", analytics.DefaultConfidence, "VaR confidence level, overrides the input")
	return cmd
}

func newAttributionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "attribution",
		Short: "Decompose portfolio returns against a benchmark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req request.AttributionRequest
			if err := readInput(cmd, opts, &req); err != nil {
				return err
			}
			attribution, err := analytics.Attribute(
				request.ReturnSeries(req.PortfolioReturns),
				request.ReturnSeries(req.BenchmarkReturns),
				req.StrategyWeights,
				req.AssetWeights,
			)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts, attribution)
		},
	}
}

func newBenchmarkCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "benchmark",
		Short: "Compare portfolio returns with a benchmark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req request.BenchmarkRequest
			if err := readInput(cmd, opts, &req); err != nil {
				return err
			}
			comparison := analytics.CompareBenchmark(
				request.ReturnSeries(req.PortfolioReturns),
				request.ReturnSeries(req.BenchmarkReturns),
			)
			return writeOutput(cmd.OutOrStdout(), opts, comparison)
		},
	}
}

func newTokenCmd() *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a time token for the analytics write API",
		Long: `Prints a fernet time token for the X-Time-Token header. The token is
signed with --key, or INTERNAL_API_KEY from the environment or .env, and is
accepted for five minutes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if apiKey == "" {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("failed to load configuration: %w", err)
				}
				apiKey = cfg.Auth.InternalAPIKey
			}
			if apiKey == "" {
				return errors.New("no API key: pass --key or set INTERNAL_API_KEY")
			}

			token := middleware.GenerateTimeToken(apiKey)
			if token == "" {
				return errors.New("failed to issue time token")
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "key", "", "API key to sign with (default INTERNAL_API_KEY)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "analytics version %s\n", version.Version)
		},
	}
}

// readInput decodes the input file (or stdin) into req and runs its validate tags.
func readInput(cmd *cobra.Command, opts *options, req any) error {
	var r io.Reader = cmd.InOrStdin()
	if opts.input != "-" {
		f, err := os.Open(opts.input)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	return validation.ValidateStruct(req)
}

func writeOutput(w io.Writer, opts *options, v any) error {
	enc := json.NewEncoder(w)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
