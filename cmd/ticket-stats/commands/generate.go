package commands

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ticket-stats/internal/pipeline"
)

var genFlags struct {
	tickets string
	org     string
	out     string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the dashboard report once and print a summary",
	RunE:  runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genFlags.tickets, "tickets", "", "ticket workbook (default from TICKET_FILE)")
	f.StringVar(&genFlags.org, "org", "", "organization workbook, empty to skip resolution (default from ORG_FILE)")
	f.StringVar(&genFlags.out, "out", "", "report output path (default from OUTPUT_FILE)")
}

// options applies the command line overrides on top of the configuration.
// Commands without the flags get the configuration as is.
func options(cmd *cobra.Command) pipeline.Options {
	opts := pipeline.Options{TicketFile: cfg.TicketFile, OrgFile: cfg.OrgFile, OutputFile: cfg.OutputFile}
	if cmd.Flags().Changed("tickets") {
		opts.TicketFile = genFlags.tickets
	}
	if cmd.Flags().Changed("org") {
		opts.OrgFile = genFlags.org
	}
	if cmd.Flags().Changed("out") {
		opts.OutputFile = genFlags.out
	}
	return opts
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	refresher := pipeline.NewRefresher(pipeline.NewRunner(nil), options(cmd), cfg.BackupFile, cfg.RegenerateTimeout)
	res, err := refresher.Regenerate(ctx)
	if err != nil {
		return fmt.Errorf("report generation failed: %w", err)
	}
	printSummary(cmd.OutOrStdout(), res)
	return nil
}

func printSummary(w io.Writer, res *pipeline.Result) {
	doc := res.Document
	fmt.Fprintln(w, "数据处理完成")
	fmt.Fprintf(w, "  总工单数: %d\n", doc.Summary.TotalTickets)
	fmt.Fprintf(w, "  部门数量: %d\n", doc.Summary.TotalDepartments)
	fmt.Fprintf(w, "  时间范围: %s 至 %s\n", doc.Summary.DateRange.Start, doc.Summary.DateRange.End)
	fmt.Fprintf(w, "  系统统计: OA系统 %d, 营销平台 %d, U8C %d\n",
		doc.SystemStats.OA, doc.SystemStats.Marketing, doc.SystemStats.U8C)
	fmt.Fprintf(w, "  未结束工单: %d\n", len(doc.UnfinishedTickets))
	if n := len(res.Problems); n > 0 {
		fmt.Fprintf(w, "  组织结构问题: %d (详见日志)\n", n)
	}
	fmt.Fprintf(w, "  耗时: %s\n", res.Elapsed.Round(time.Millisecond))
}
