package digest

import (
	"fmt"
	"strings"
	"time"
)

const (
	// NoItemsText is appended to the headline when the digest is empty.
	NoItemsText = `No items found this week\.`
	// Footer closes every non-empty digest.
	Footer = `_Reply with ideas for next week or DM me to add feeds\._`

	dateLayout = "2006-01-02"
)

// specialChars must be backslash escaped in Telegram MarkdownV2 text.
const specialChars = "_[]()~`>#+-=|{}.!"

// Message is everything needed to render one digest.
type Message struct {
	Title string
	Date  time.Time
	Intro string
	Items []Item
}

// Escape prefixes every MarkdownV2 special character in s with a backslash.
// Each rune is looked at exactly once, so inserted backslashes are never re-escaped.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/4)
	for _, r := range s {
		if strings.ContainsRune(specialChars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Headline renders the bold title line with the UTC date.
func Headline(title string, date time.Time) string {
	return fmt.Sprintf("*%s — %s*\n", Escape(strings.TrimSpace(title)), Escape(date.UTC().Format(dateLayout)))
}

// Line renders a single item at the given 1-based position.
func Line(idx int, it Item) string {
	title := Escape(it.Title)
	source := Escape(it.Source)
	if it.URL != "" {
		return fmt.Sprintf("%d. [%s](%s) _(%s)_", idx, title, Escape(it.URL), source)
	}
	return fmt.Sprintf("%d. %s _(%s)_", idx, title, source)
}

// Render builds the final message text.
func Render(m Message) string {
	headline := Headline(m.Title, m.Date)
	if len(m.Items) == 0 {
		return headline + NoItemsText
	}

	var b strings.Builder
	b.WriteString(headline)
	if intro := strings.TrimSpace(m.Intro); intro != "" {
		b.WriteString("_" + Escape(intro) + "_\n\n")
	}
	for i, it := range m.Items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(Line(i+1, it))
	}
	b.WriteString("\n\n")
	b.WriteString(Footer)
	return b.String()
}
