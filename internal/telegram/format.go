package telegram

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/deusflow/okolica/internal/article"
)

// MaxMessageLength is the Bot API limit for one text message.
const MaxMessageLength = 4096

// EscapeHTML escapes text for parse_mode=HTML.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

func hrefAttr(u string) string {
	return strings.ReplaceAll(u, `"`, "&quot;")
}

// FormatNewArticle renders the announcement posted for a freshly seen story.
func FormatNewArticle(a article.Result) string {
	var b strings.Builder
	b.WriteString("📰 <b>Новая статья</b>\n\n")
	b.WriteString("<b>" + EscapeHTML(a.Title) + "</b>\n\n")
	if a.Summary != "" {
		b.WriteString(EscapeHTML(a.Summary))
	}
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf(`🔗 <a href="%s">Читать</a>`, hrefAttr(a.URL)))

	msg := b.String()
	if utf8.RuneCountInString(msg) > MaxMessageLength {
		msg = article.Truncate(msg, MaxMessageLength-6) + "..."
	}
	return msg
}

// FormatArticles renders a numbered list under header. Articles that would push
// the message past MaxMessageLength are replaced by a truncation marker.
func FormatArticles(articles []article.Result, header string) string {
	lines := []string{header, ""}
	for i, a := range articles {
		var block strings.Builder
		block.WriteString(fmt.Sprintf("%d. <b>%s</b>\n", i+1, EscapeHTML(a.Title)))
		if a.Summary != "" {
			block.WriteString(EscapeHTML(a.Summary) + "\n")
		}
		block.WriteString(fmt.Sprintf("🔗 <a href=\"%s\">Читать</a>\n\n", hrefAttr(a.URL)))

		if utf8.RuneCountInString(strings.Join(lines, "\n")+block.String()) > MaxMessageLength-50 {
			lines = append(lines, "… (сообщение обрезано)")
			break
		}
		lines = append(lines, block.String())
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ResultsHeader returns the FormatArticles header for a result list. kind is
// "latest", "news", "archive" or anything else for the combined search.
func ResultsHeader(kind, q string) string {
	q = EscapeHTML(q)
	switch kind {
	case "latest":
		return "📰 <b>Последние новости:</b>"
	case "news":
		return "📰 <b>Новости okolica.net по запросу «" + q + "»:</b>"
	case "archive":
		return "📖 <b>Архив газеты по запросу «" + q + "»:</b>"
	default:
		return "🔍 <b>Результаты по запросу «" + q + "»:</b>"
	}
}

// NotFound is the reply for an empty result list.
func NotFound(kind, q string) string {
	if kind == "latest" {
		return "😔 Свежих новостей не найдено."
	}
	return "😔 По запросу «" + EscapeHTML(q) + "» ничего не найдено."
}
