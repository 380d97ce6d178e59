package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"hotel-rate-engine/models"
)

// PrintBatchReport formats and prints the batch report to the terminal
func PrintBatchReport(report *models.BatchReport) {
	WriteBatchReport(os.Stdout, report)
}

// WriteBatchReport renders the batch report to w
func WriteBatchReport(w io.Writer, report *models.BatchReport) {
	border := strings.Repeat("═", 55)
	thin := strings.Repeat("─", 55)

	fmt.Fprintf(w, "\n╔%s╗\n", border)
	fmt.Fprintf(w, "║%s║\n", center("RATE RECOMMENDATION SUMMARY", 55))
	fmt.Fprintf(w, "╚%s╝\n", border)

	fmt.Fprintf(w, "\n OVERVIEW\n%s\n", thin)
	fmt.Fprintf(w, "  Property                : %s\n", report.PropertyID)
	fmt.Fprintf(w, "  Rate Cells              : %d\n", report.TotalCells)
	fmt.Fprintf(w, "  Recommendations         : %d\n", report.Recommended)
	fmt.Fprintf(w, "  No Competitor Data      : %d\n", report.NoData)
	fmt.Fprintf(w, "  Computation Faults      : %d\n", report.Faults)
	if report.Skipped > 0 {
		fmt.Fprintf(w, "  Skipped (deadline)      : %d\n", report.Skipped)
	}
	fmt.Fprintf(w, "  Average Change          : %+.1f%%\n", report.AverageChangePct)
	fmt.Fprintf(w, "  Average Confidence      : %.0f\n", report.AverageConfidence)
	fmt.Fprintf(w, "  Elapsed                 : %s\n", report.Duration.Round(time.Millisecond))

	if report.LargestIncrease != nil {
		fmt.Fprintf(w, "\n LARGEST INCREASE\n%s\n", thin)
		printMove(w, report.LargestIncrease)
	}
	if report.LargestDecrease != nil {
		fmt.Fprintf(w, "\n LARGEST DECREASE\n%s\n", thin)
		printMove(w, report.LargestDecrease)
	}

	if len(report.ByDemandLevel) > 0 {
		fmt.Fprintf(w, "\n DEMAND LEVELS\n%s\n", thin)
		for _, level := range []models.DemandLevel{models.DemandHigh, models.DemandMedium, models.DemandLow} {
			printBar(w, string(level), report.ByDemandLevel[level], report.Recommended)
		}
	}

	if len(report.ByMarketTrend) > 0 {
		fmt.Fprintf(w, "\n MARKET TRENDS\n%s\n", thin)
		trends := make([]string, 0, len(report.ByMarketTrend))
		for t := range report.ByMarketTrend {
			trends = append(trends, string(t))
		}
		sort.Strings(trends)
		for _, t := range trends {
			printBar(w, t, report.ByMarketTrend[models.MarketTrend(t)], report.Recommended)
		}
	}

	fmt.Fprintf(w, "\n%s\n\n", border)
}

func printMove(w io.Writer, r *models.RateRecommendation) {
	fmt.Fprintf(w, "  Cell     : %s / %s on %s\n", r.RoomTypeCode, truncate(r.RatePlanCode, 20), r.Date.Format("2006-01-02"))
	fmt.Fprintf(w, "  Rate     : %s -> %d (%+.1f%%)\n", r.CurrentRate.StringFixed(2), r.SuggestedRate, r.ChangePercent())
	fmt.Fprintf(w, "  Reason   : %s\n", truncate(r.Reasoning, 80))
}

// printBar draws a bar of at most 30 blocks scaled to total
func printBar(w io.Writer, label string, count, total int) {
	width := 0
	if total > 0 {
		width = count * 30 / total
	}
	fmt.Fprintf(w, "  %-10s %5d  %s\n", label+":", count, strings.Repeat("▓", width))
}

func center(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	pad := (width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(runes)-pad)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
