package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deusflow/okolica/internal/article"
	"github.com/deusflow/okolica/internal/metrics"
	"github.com/deusflow/okolica/internal/retry"
	"github.com/deusflow/okolica/internal/storage"
	"github.com/deusflow/okolica/internal/telegram"
)

// LatestSource yields the newest front-page stories.
type LatestSource interface {
	LatestRecords(ctx context.Context, limit int) ([]article.Record, error)
}

// MessageSender delivers one HTML message to a chat.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// Notifier announces stories that are not in the store yet.
type Notifier struct {
	Latest LatestSource
	Store  storage.ArticleStore
	Sender MessageSender
	ChatID string
	Limit  int
	Pause  time.Duration // between messages
}

// NotifyResult summarizes one run.
type NotifyResult struct {
	NewArticles       int `json:"new_articles"`
	NotificationsSent int `json:"notifications_sent"`
}

// Run checks the front page once. A failed message is logged and does not stop the run;
// store errors do.
func (n *Notifier) Run(ctx context.Context) (NotifyResult, error) {
	var res NotifyResult

	records, err := n.Latest.LatestRecords(ctx, n.Limit)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return res, fmt.Errorf("fetch latest: %w", err)
	}

	for _, rec := range records {
		exists, err := n.Store.Exists(ctx, rec.URL)
		if err != nil {
			metrics.Global.SetError(err.Error())
			return res, err
		}
		if exists {
			continue
		}

		_, added, err := n.Store.Add(ctx, rec.Title, rec.URL, rec.Summary)
		if err != nil {
			metrics.Global.SetError(err.Error())
			return res, err
		}
		if !added {
			continue
		}
		res.NewArticles++
		metrics.Global.IncrementArticlesStored()

		if err := n.Sender.SendMessage(ctx, n.ChatID, telegram.FormatNewArticle(rec.Result())); err != nil {
			slog.Warn("announcement not sent", "url", rec.URL, "error", err)
			continue
		}
		res.NotificationsSent++
		metrics.Global.IncrementMessagesSent()

		if err := retry.Sleep(ctx, n.Pause); err != nil {
			return res, err
		}
	}

	metrics.Global.SetLastRun()
	slog.Info("notify run done", "checked", len(records), "new", res.NewArticles, "sent", res.NotificationsSent)
	return res, nil
}

// PostResults sends one result list to chatID as a single message.
func PostResults(ctx context.Context, sender MessageSender, chatID, kind, q string, results []article.Result) error {
	text := telegram.NotFound(kind, q)
	if len(results) > 0 {
		text = telegram.FormatArticles(results, telegram.ResultsHeader(kind, q))
	}
	if err := sender.SendMessage(ctx, chatID, text); err != nil {
		return fmt.Errorf("post %s results: %w", kind, err)
	}
	metrics.Global.IncrementMessagesSent()
	return nil
}
