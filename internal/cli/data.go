package cli

import (
	"fmt"
	"strings"

	"telar-chat-api/pkg/services"

	"github.com/spf13/cobra"
)

func init() {
	chart := &cobra.Command{
		Use:   "chart [description]",
		Short: "Build chart data from a free-text description",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runChart,
	}

	report := &cobra.Command{
		Use:   "report [inventory|sales|metrics]",
		Short: "Print a raw report",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReport,
	}

	metrics := &cobra.Command{
		Use:   "metrics",
		Short: "Print business metrics for an optional date range",
		Args:  cobra.NoArgs,
		RunE:  runMetrics,
	}
	metrics.Flags().String("start", "", "Start date (YYYY-MM-DD, inclusive)")
	metrics.Flags().String("end", "", "End date (YYYY-MM-DD, inclusive)")

	RootCmd.AddCommand(chart, report, metrics)
}

func runChart(cmd *cobra.Command, args []string) error {
	req := services.BuildChartRequest(strings.Join(args, " "))
	data, err := services.NewChartService(services.NewDataService()).GenerateChartData(req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !textFormat() {
		return writeJSON(out, map[string]any{"request": req, "data": data, "options": services.ChartOptionsFor(req)})
	}
	fmt.Fprintf(out, "%s %s by %s\n", req.Kind, req.Metric, req.GroupBy)
	for _, ds := range data.Datasets {
		for i, label := range data.Labels {
			fmt.Fprintf(out, "  %-12s %10.2f\n", label, ds.Values[i])
		}
	}
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	reportType := "metrics"
	if len(args) == 1 {
		reportType = strings.ToLower(args[0])
	}
	report, err := services.NewDataService().GenerateReport(reportType)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), report.Payload())
}

func runMetrics(cmd *cobra.Command, args []string) error {
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")

	m, err := services.NewDataService().ComputeMetrics(start, end)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !textFormat() {
		return writeJSON(out, m)
	}
	fmt.Fprintf(out, "total sales:   $%.2f\n", m.TotalSales)
	fmt.Fprintf(out, "average order: $%.2f\n", m.AverageOrderValue)
	return nil
}
