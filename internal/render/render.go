// Package render formats backend results for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/bull/docchat-cli/internal/backend"
	"github.com/bull/docchat-cli/internal/stage"
)

var (
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	sourceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// Renderer turns SDK results into terminal output. plain disables markdown
// styling for non-TTY use.
type Renderer struct {
	plain    bool
	markdown *glamour.TermRenderer
}

// New creates a Renderer. Markdown rendering degrades to raw text when the
// glamour renderer cannot be built (e.g. no usable TERM).
func New(plain bool) *Renderer {
	r := &Renderer{plain: plain}
	if !plain {
		if tr, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		); err == nil {
			r.markdown = tr
		}
	}
	return r
}

// StageLine renders one status snapshot as a single progress line, e.g.
//
//	[extracting ✓] [cleaning ✓] [chunking ●] [embedding] [storing]  60%  parsing tables
//
// Completion and activity come straight from the stage predicates, so the
// line can never disagree with the poller's view of the pipeline.
func (r *Renderer) StageLine(status backend.ProcessingStatus) string {
	if status.Stage == stage.Error {
		msg := status.Error
		if msg == "" {
			msg = "processing failed"
		}
		return r.style(errorStyle, "processing error: "+msg)
	}

	var parts []string
	for _, s := range stage.Pipeline() {
		if s == stage.Ready {
			continue
		}
		switch {
		case stage.IsComplete(s, status.Stage) || status.Stage == stage.Ready:
			parts = append(parts, r.style(doneStyle, fmt.Sprintf("[%s ✓]", s)))
		case stage.IsActive(s, status.Stage):
			parts = append(parts, r.style(activeStyle, fmt.Sprintf("[%s ●]", s)))
		default:
			parts = append(parts, r.style(pendingStyle, fmt.Sprintf("[%s]", s)))
		}
	}

	line := fmt.Sprintf("%s  %d%%", strings.Join(parts, " "), status.Progress)
	if status.Message != "" {
		line += "  " + r.style(faintStyle, status.Message)
	}
	return line
}

// UploadLine renders one pre-upload progress notification.
func (r *Renderer) UploadLine(current, total int, filename string) string {
	return fmt.Sprintf("%s %s",
		r.style(faintStyle, fmt.Sprintf("[%d/%d]", current, total)),
		filename)
}

// Answer renders an assistant message: markdown answer, optional caveat, and
// the ranked citations exactly in backend order. Out-of-range similarity
// scores are flagged inline rather than clamped.
func (r *Renderer) Answer(msg *backend.ChatMessage) string {
	var b strings.Builder

	b.WriteString(r.renderMarkdown(msg.Content))

	if msg.Error != "" {
		b.WriteString("\n")
		b.WriteString(r.style(warnStyle, "caveat: "+msg.Error))
		b.WriteString("\n")
	}

	if len(msg.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(r.style(sourceStyle, "Sources"))
		b.WriteString("\n")
		for i, src := range msg.Sources {
			score := fmt.Sprintf("%.2f", src.SimilarityScore)
			if src.SimilarityScore < 0 || src.SimilarityScore > 1 {
				score = r.style(errorStyle, score+" (out of range)")
			}
			b.WriteString(fmt.Sprintf("  %d. %s#%d  %s\n",
				i+1,
				r.style(sourceStyle, src.Filename),
				src.ChunkID,
				score))
			if preview := strings.TrimSpace(src.TextPreview); preview != "" {
				b.WriteString("     " + r.style(faintStyle, truncate(preview, 120)) + "\n")
			}
		}
	}
	return b.String()
}

// Sessions renders the session list, preserving backend order.
func (r *Renderer) Sessions(sessions []backend.Session) string {
	if len(sessions) == 0 {
		return r.style(faintStyle, "no sessions") + "\n"
	}
	var b strings.Builder
	for _, s := range sessions {
		created := "-"
		if s.CreatedDate != nil {
			created = s.CreatedDate.Format("2006-01-02 15:04")
		}
		b.WriteString(fmt.Sprintf("%s  %s  %s  %s\n",
			r.style(sourceStyle, s.SessionID),
			s.CollectionName,
			r.style(faintStyle, fmt.Sprintf("%d docs", s.DocumentCount)),
			r.style(faintStyle, created)))
	}
	return b.String()
}

func (r *Renderer) renderMarkdown(content string) string {
	if r.markdown == nil {
		return content + "\n"
	}
	out, err := r.markdown.Render(content)
	if err != nil {
		return content + "\n"
	}
	return out
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if r.plain {
		return text
	}
	return s.Render(text)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
