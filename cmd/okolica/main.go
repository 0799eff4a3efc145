package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deusflow/okolica/internal/app"
	"github.com/deusflow/okolica/internal/article"
	"github.com/deusflow/okolica/internal/config"
	"github.com/deusflow/okolica/internal/logger"
	"github.com/deusflow/okolica/internal/news"
	"github.com/deusflow/okolica/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var a *app.App

	root := &cobra.Command{
		Use:           "okolica",
		Short:         "Search the Okolica newspaper sites",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			// Results go to stdout, logs to stderr.
			logger.InitWithWriter(os.Stderr, cfg.Debug)
			a = app.Build(cfg)
			return nil
		},
	}

	var (
		limit int
		send  bool
	)
	searchCmd := func(use, short string, fn func(*app.App) func(context.Context, string, int) ([]article.Result, error)) *cobra.Command {
		cmd := &cobra.Command{
			Use:   use + " <query>",
			Short: short,
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				q := strings.Join(args, " ")
				results, err := fn(a)(cmd.Context(), q, limit)
				if err := printResults(cmd.OutOrStdout(), results, err); err != nil {
					return err
				}
				if send {
					return sendResults(cmd.Context(), a.Config, use, q, results)
				}
				return nil
			},
		}
		cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results (0 = default)")
		cmd.Flags().BoolVar(&send, "send", false, "also post the results to TELEGRAM_CHAT_ID")
		return cmd
	}

	root.AddCommand(
		searchCmd("search", "Search news and the newspaper archive", func(a *app.App) func(context.Context, string, int) ([]article.Result, error) {
			return a.News.Search
		}),
		searchCmd("news", "Search news only", func(a *app.App) func(context.Context, string, int) ([]article.Result, error) {
			return a.News.SearchNews
		}),
		searchCmd("archive", "Search the newspaper archive only", func(a *app.App) func(context.Context, string, int) ([]article.Result, error) {
			return a.News.SearchArchive
		}),
		latestCmd(&a),
		weatherCmd(&a),
		notifyCmd(&a),
		serveCmd(&a),
	)
	return root
}

func latestCmd(a **app.App) *cobra.Command {
	var (
		limit int
		send  bool
	)
	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the newest stories from the front page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := (*a).News.Latest(cmd.Context(), limit)
			if err := printResults(cmd.OutOrStdout(), results, err); err != nil {
				return err
			}
			if send {
				return sendResults(cmd.Context(), (*a).Config, "latest", "", results)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of stories (0 = default)")
	cmd.Flags().BoolVar(&send, "send", false, "also post the stories to TELEGRAM_CHAT_ID")
	return cmd
}

func weatherCmd(a **app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "weather",
		Short: "Show the current weather",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), (*a).Weather.Current(cmd.Context()))
			return err
		},
	}
}

func notifyCmd(a **app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Announce new front-page stories in Telegram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, closeStore, err := buildNotifier(cmd.Context(), (*a).Config, (*a).News)
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := n.Run(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "new articles: %d, notifications sent: %d\n", res.NewArticles, res.NotificationsSent)
			return err
		},
	}
}

func serveCmd(a **app.App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := (*a).Config
			if addr == "" {
				addr = cfg.ListenAddr
			}

			var notifier *app.Notifier
			if cfg.ValidateNotify() == nil {
				n, closeStore, err := buildNotifier(cmd.Context(), cfg, (*a).News)
				if err != nil {
					return err
				}
				defer closeStore()
				notifier = n
			}

			srv := app.NewServer((*a).News, (*a).Weather, notifier, cfg.CronSecret)
			for name, fn := range (*a).Stats() {
				srv.AddStats(name, fn)
			}
			if notifier != nil {
				srv.AddStats("article_store", app.StoreStats(notifier.Store))
			}
			return srv.Serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default LISTEN_ADDR or :8080)")
	return cmd
}

func buildNotifier(ctx context.Context, cfg *config.Config, latest app.LatestSource) (*app.Notifier, func(), error) {
	if err := cfg.ValidateNotify(); err != nil {
		return nil, nil, err
	}
	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	n := &app.Notifier{
		Latest: latest,
		Store:  store,
		Sender: telegram.NewSender(cfg.TelegramToken),
		ChatID: cfg.TelegramChatID,
		Limit:  cfg.NotifyLimit,
		Pause:  100 * time.Millisecond,
	}
	return n, func() { _ = store.Close() }, nil
}

func sendResults(ctx context.Context, cfg *config.Config, kind, q string, results []article.Result) error {
	if err := cfg.ValidateNotify(); err != nil {
		return err
	}
	return app.PostResults(ctx, telegram.NewSender(cfg.TelegramToken), cfg.TelegramChatID, kind, q, results)
}

func printResults(w io.Writer, results []article.Result, err error) error {
	if err != nil {
		if errors.Is(err, news.ErrUnavailable) {
			fmt.Fprintln(w, "Сервис временно недоступен, попробуйте позже.")
		}
		return err
	}
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "Ничего не найдено.")
		return err
	}
	for i, r := range results {
		fmt.Fprintf(w, "%d. %s\n", i+1, r.Title)
		if r.Summary != "" {
			fmt.Fprintf(w, "   %s\n", r.Summary)
		}
		fmt.Fprintf(w, "   %s\n", r.URL)
	}
	return nil
}
