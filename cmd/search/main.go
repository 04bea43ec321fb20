package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/zatekoja/erhospitalmatch/internal/application/services"
	"github.com/zatekoja/erhospitalmatch/internal/bootstrap"
	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
	"github.com/zatekoja/erhospitalmatch/internal/evaluation"
	"github.com/zatekoja/erhospitalmatch/internal/infrastructure/observability"
	"github.com/zatekoja/erhospitalmatch/pkg/config"
	"github.com/zatekoja/erhospitalmatch/pkg/secrets"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "search",
		Short:        "Emergency hospital search from the command line",
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("verbose", false, "Log pipeline progress to stderr")

	root.AddCommand(recommendCmd())
	root.AddCommand(districtsCmd())
	root.AddCommand(evaluateCmd())
	return root
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if _, err := secrets.ApplyVaultSecrets(cmd.Context(), secrets.LoadVaultConfigFromEnv()); err != nil {
		return nil, err
	}
	return config.Load()
}

func setupLogging(cmd *cobra.Command) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	observability.InitLogger("er-hospital-search", "development")
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

func recommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank hospitals for a patient at a location",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd)

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			req := requestFromFlags(cmd)

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			app, err := bootstrap.New(ctx, cfg, nil)
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Recommendations.Recommend(ctx, req)
			if err != nil {
				return err
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return printResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().String("city", "서울특별시", "City of the requester")
	cmd.Flags().String("district", "", "District of the requester")
	cmd.Flags().Float64("lat", 0, "Requester latitude")
	cmd.Flags().Float64("lon", 0, "Requester longitude")
	cmd.Flags().String("severity", "MEDIUM", "LOW, MEDIUM or HIGH")
	cmd.Flags().String("condition", "UNKNOWN", "Suspected condition")
	cmd.Flags().Bool("need-icu", false, "Patient needs an ICU bed")
	cmd.Flags().Bool("need-ventilator", false, "Patient needs a ventilator")
	cmd.Flags().Bool("need-ct", false, "Patient needs CT")
	cmd.Flags().Bool("need-mri", false, "Patient needs MRI")
	cmd.Flags().Float64("confidence", 1.0, "Confidence of the patient summary")
	cmd.Flags().Float64("threshold", -1, "Minimum acceptance probability (default from config)")
	cmd.Flags().Int("top-k", 0, "Number of hospitals to return (default from config)")
	cmd.Flags().Int("max-filter-level", -1, "Loosest filter level to rank (default from config)")
	cmd.Flags().Bool("json", false, "Print the full result as JSON")
	_ = cmd.MarkFlagRequired("district")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")

	return cmd
}

func requestFromFlags(cmd *cobra.Command) services.RecommendationRequest {
	flags := cmd.Flags()
	city, _ := flags.GetString("city")
	district, _ := flags.GetString("district")
	lat, _ := flags.GetFloat64("lat")
	lon, _ := flags.GetFloat64("lon")
	severity, _ := flags.GetString("severity")
	condition, _ := flags.GetString("condition")
	needICU, _ := flags.GetBool("need-icu")
	needVentilator, _ := flags.GetBool("need-ventilator")
	needCT, _ := flags.GetBool("need-ct")
	needMRI, _ := flags.GetBool("need-mri")
	confidence, _ := flags.GetFloat64("confidence")

	req := services.RecommendationRequest{
		City:      city,
		District:  district,
		Latitude:  lat,
		Longitude: lon,
		Requirement: entities.NewPatientRequirement(severity, condition, entities.RequiredResources{
			NeedICU:        needICU,
			NeedVentilator: needVentilator,
			NeedCT:         needCT,
			NeedMRI:        needMRI,
		}, confidence),
	}

	if flags.Changed("threshold") {
		threshold, _ := flags.GetFloat64("threshold")
		req.Threshold = &threshold
	}
	if flags.Changed("top-k") {
		topK, _ := flags.GetInt("top-k")
		req.TopK = &topK
	}
	if flags.Changed("max-filter-level") {
		level, _ := flags.GetInt("max-filter-level")
		req.MaxFilterLevel = &level
	}
	return req
}

func printResult(out io.Writer, result *services.RecommendationResult) error {
	switch result.Status {
	case entities.RecommendationStatusNoCandidates:
		_, err := fmt.Fprintln(out, "No hospital candidates found.")
		return err
	case entities.RecommendationStatusNoAcceptableCandidates:
		_, err := fmt.Fprintf(out, "%d candidates found, none met the acceptance criteria.\n", result.CandidateCount)
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tHPID\tNAME\tPHONE\tACCEPT\tDIST(km)\tTIME(min)")
	for _, h := range result.Hospitals {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.3f\t%.2f\t%.1f\n",
			h.Rank, h.HospitalID, h.Name, h.Phone, h.AcceptProb, h.DistanceKm, h.TravelTimeMin)
	}
	return tw.Flush()
}

func districtsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "districts [city]",
		Short: "List the districts registered for a city",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd)

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			app, err := bootstrap.New(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer app.Close()

			if len(args) == 0 {
				for _, city := range app.GeoIndex.Cities() {
					fmt.Fprintln(cmd.OutOrStdout(), city)
				}
				return nil
			}

			districts, err := app.GeoIndex.Districts(args[0])
			if err != nil {
				return err
			}
			for _, d := range districts {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}
}

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Replay historical dispatches and report Recall@K and MRR@K",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd)

			path, _ := cmd.Flags().GetString("cases")
			k, _ := cmd.Flags().GetInt("k")

			cases, err := evaluation.LoadDispatchCases(path)
			if err != nil {
				return err
			}
			if err := evaluation.ValidateDispatchCases(cases); err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			app, err := bootstrap.New(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer app.Close()

			summary := evaluation.NewRunner(app.Recommendations, k).Run(cmd.Context(), cases)
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().String("cases", "", "Path to a JSON file of dispatch cases")
	cmd.Flags().Int("k", 5, "Ranking cutoff")
	_ = cmd.MarkFlagRequired("cases")

	return cmd
}

func printSummary(out io.Writer, s *evaluation.EvalSummary) error {
	fmt.Fprintf(out, "cases=%d failed=%d with_results=%d\n", s.TotalCases, s.FailedCases, s.CasesWithHits)
	fmt.Fprintf(out, "Recall@%d=%.3f MRR@%d=%.3f avg_latency=%s\n", s.K, s.AvgRecallAtK, s.K, s.AvgMRRAtK, s.AvgLatency)

	conditions := make([]string, 0, len(s.ByCondition))
	for c := range s.ByCondition {
		conditions = append(conditions, string(c))
	}
	sort.Strings(conditions)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "CONDITION\tCASES\tRECALL@%d\tMRR@%d\n", s.K, s.K)
	for _, c := range conditions {
		cs := s.ByCondition[entities.Condition(c)]
		fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.3f\n", c, cs.Count, cs.AvgRecallAtK, cs.AvgMRRAtK)
	}
	return tw.Flush()
}
