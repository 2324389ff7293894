// Package display provides terminal output formatting for folio.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/gauthierbraillon/folio/internal/portfolio"
	"github.com/gauthierbraillon/folio/internal/users"
)

const separator = " • "

// TerminalFormatter formats portfolios and profiles for terminal display.
type TerminalFormatter struct{}

// NewTerminalFormatter creates a new terminal formatter.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{}
}

// FormatSummary formats a single portfolio card for display.
func (f *TerminalFormatter) FormatSummary(s portfolio.Summary) string {
	var lines []string

	// Header: #ID [CATEGORY/FILTER] Title
	header := fmt.Sprintf("#%d [%s] %s", s.ID, f.formatSection(s.Category, s.Filter), s.Title)
	lines = append(lines, header)

	meta := fmt.Sprintf("  by %s", s.Nickname)
	if !s.CreatedAt.IsZero() {
		meta += separator + f.FormatTimestamp(s.CreatedAt)
	}
	lines = append(lines, meta)

	if engagement := f.formatEngagement(s.Views, s.Likes); engagement != "" {
		lines = append(lines, "  "+engagement)
	}

	if s.ThumbnailURL != "" {
		lines = append(lines, "  "+s.ThumbnailURL)
	}

	return strings.Join(lines, "\n") + "\n"
}

func (f *TerminalFormatter) formatSection(c portfolio.Category, filter string) string {
	section := strings.ToUpper(string(c))
	if filter != "" && filter != portfolio.FilterAll {
		section += "/" + filter
	}
	return section
}

func (f *TerminalFormatter) formatEngagement(views, likes int64) string {
	var parts []string

	if views > 0 {
		parts = append(parts, fmt.Sprintf("%d views", views))
	}
	if likes > 0 {
		parts = append(parts, fmt.Sprintf("%d likes", likes))
	}

	return strings.Join(parts, separator)
}

// FormatFeed formats the accumulated feed in display order.
func (f *TerminalFormatter) FormatFeed(items []portfolio.Summary) string {
	if len(items) == 0 {
		return "No portfolios found.\n"
	}

	var formatted []string
	for _, item := range items {
		formatted = append(formatted, f.FormatSummary(item))
	}

	return strings.Join(formatted, "\n---\n\n")
}

// FormatDetail formats a full portfolio page.
func (f *TerminalFormatter) FormatDetail(d portfolio.Detail) string {
	var b strings.Builder

	b.WriteString(f.FormatSummary(d.Summary))
	if d.Introduction != "" {
		b.WriteString("\n")
		b.WriteString(d.Introduction)
		b.WriteString("\n")
	}
	if len(d.Skills) > 0 {
		fmt.Fprintf(&b, "\nSkills: %s\n", strings.Join(d.Skills, ", "))
	}
	if len(d.Links) > 0 {
		b.WriteString("\nLinks:\n")
		for _, l := range d.Links {
			fmt.Fprintf(&b, "  %s\n", l)
		}
	}

	return b.String()
}

// FormatUser formats a user profile.
func (f *TerminalFormatter) FormatUser(u users.User) string {
	lines := []string{
		fmt.Sprintf("%s (#%d)", u.Nickname, u.ID),
		"  " + u.Email,
	}
	if u.ProfileImageURL != "" {
		lines = append(lines, "  "+u.ProfileImageURL)
	}
	if u.Introduction != "" {
		lines = append(lines, "", u.Introduction)
	}
	return strings.Join(lines, "\n") + "\n"
}

// FormatTimestamp formats a timestamp as relative time.
func (f *TerminalFormatter) FormatTimestamp(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return pluralize(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return pluralize(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return pluralize(int(diff.Hours()/24), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// pluralize returns "N unit ago" or "N units ago" based on count.
func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// TruncateText truncates text to maxLen runes, adding "..." if truncated.
func (f *TerminalFormatter) TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}
