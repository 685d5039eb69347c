package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/little-lemon/internal/application/scheduler"
	"github.com/example/little-lemon/internal/interfaces/web"
)

func newServerCmd() *cobra.Command {
	var warm bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the reservation web API and availability warmer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, err := setup(ctx, false)
			if err != nil {
				return err
			}
			defer d.Close()

			tmpl, err := web.ParseTemplates()
			if err != nil {
				return err
			}
			opts := web.Options{
				Addr:     d.cfg.HTTPAddr,
				Logger:   d.logger,
				Location: d.cfg.Location,
				Limiter:  web.NewRateLimiter(d.cfg.RateLimitPerSecond, d.cfg.RateLimitBurst),
			}
			if d.cfg.DraftsEnabled() {
				opts.Drafts = web.NewDraftManager(d.cfg.CookieHashKey, d.cfg.CookieBlockKey)
			} else {
				d.logger.Info("COOKIE_HASH_KEY/COOKIE_BLOCK_KEY not set; booking drafts disabled")
			}
			ws := web.New(d.provider, tmpl, opts)

			g, gctx := errgroup.WithContext(ctx)
			if warm {
				w := &scheduler.Warmer{
					Source:   d.provider,
					Days:     d.cfg.WarmDays,
					Interval: d.cfg.WarmInterval,
					Location: d.cfg.Location,
					Logger:   d.logger.Named("warmer"),
				}
				g.Go(func() error {
					if err := w.Run(gctx); err != nil && gctx.Err() == nil {
						return err
					}
					return nil
				})
			}
			g.Go(func() error {
				defer cancel()
				return ws.ListenAndServe(gctx)
			})

			err = g.Wait()
			d.logger.Info("server stopped", zap.Error(err))
			return err
		},
	}

	cmd.Flags().BoolVar(&warm, "warm", true, "keep availability for the next WARM_DAYS days cached")
	cmd.Flags().Lookup("warm").NoOptDefVal = "true"
	return cmd
}
