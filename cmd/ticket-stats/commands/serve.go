package commands

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ticket-stats/internal/pipeline"
	"ticket-stats/internal/server"
)

var serveFlags struct {
	addr string
	open bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard and accept workbook uploads",
	Long: `Serves the dashboard files from WEB_ROOT, the current report at /ticket_data.json and
accepts replacement ticket workbooks on POST /upload. The report is regenerated at startup
and after every successful upload.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr := cfg.ListenAddr
		if cmd.Flags().Changed("addr") {
			addr = serveFlags.addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		opts := options(cmd)
		refresher := pipeline.NewRefresher(pipeline.NewRunner(nil), opts, cfg.BackupFile, cfg.RegenerateTimeout)
		if _, err := refresher.Regenerate(ctx); err != nil {
			log.Warn().Err(err).Str("source", opts.TicketFile).Msg("Initial report generation failed, serving the previous report")
		}

		srv := server.New(server.Config{
			WebRoot:     cfg.WebRoot,
			TicketFile:  opts.TicketFile,
			OutputFile:  opts.OutputFile,
			MaxUploadMB: cfg.MaxUploadMB,
		}, refresher)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.Start(ctx, addr)
		})
		if serveFlags.open {
			g.Go(func() error {
				openDashboard(ctx, addr)
				return nil
			})
		}
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "listen address (default from LISTEN_ADDR)")
	serveCmd.Flags().BoolVar(&serveFlags.open, "open", false, "open the dashboard in the default browser")
}

// openDashboard waits until the listener accepts connections, then opens the browser.
func openDashboard(ctx context.Context, addr string) {
	host := addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	url := fmt.Sprintf("http://%s/", host)

	for range 50 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
		conn, err := net.DialTimeout("tcp", host, 200*time.Millisecond)
		if err != nil {
			continue
		}
		conn.Close()
		if err := browser.OpenURL(url); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Failed to open browser")
		}
		return
	}
	log.Warn().Str("url", url).Msg("Server not reachable, browser not opened")
}
