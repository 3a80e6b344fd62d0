package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/community-accounts-cli/internal/domain"
)

type RenderOptions struct {
	Title string
}

func renderView(days []domain.HistoryDay, opts RenderOptions, s styles) string {
	title := opts.Title
	if title == "" {
		title = "Operation History"
	}

	lines := []string{
		s.title.Render(title),
		s.header.Render(fmt.Sprintf("records: %d", totalRecords(days))),
	}

	if totalRecords(days) == 0 {
		lines = append(lines, s.empty.Render("No operations recorded."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, day := range days {
		if len(day.Records) == 0 {
			continue
		}
		lines = append(lines, s.section.Render(renderDay(day, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderDay(day domain.HistoryDay, s styles) string {
	succeeded := 0
	for _, record := range day.Records {
		if record.Result == domain.OutcomeSuccess {
			succeeded++
		}
	}

	parts := []string{
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.day.Render(day.Date),
			" ",
			s.meta.Render(fmt.Sprintf("(%d/%d succeeded)", succeeded, len(day.Records))),
		),
	}

	for _, record := range day.Records {
		parts = append(parts, renderRecord(record, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderRecord(record domain.HistoryRecord, s styles) string {
	segments := []string{
		s.timestamp.Render(record.Timestamp.Format("15:04:05")),
		" ",
		resultBadge(record.Result, s),
		" ",
		s.operation.Render(record.Operation),
	}

	if record.Email != "" {
		segments = append(segments, " ", s.detail.Render(record.Email))
	}

	if record.TargetID != "" {
		segments = append(segments, " ", s.meta.Render("#"+record.TargetID))
	}

	if record.Env != "" {
		segments = append(segments, " ", s.meta.Render("["+string(record.Env)+"]"))
	}

	if detail := strings.TrimSpace(record.Details); detail != "" {
		segments = append(segments, " ", s.detail.Render(detail))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, segments...)
}

func resultBadge(result domain.Outcome, s styles) string {
	if result == domain.OutcomeSuccess {
		return s.success.Render("ok")
	}

	return s.failure.Render("failed")
}

func totalRecords(days []domain.HistoryDay) int {
	total := 0
	for _, day := range days {
		total += len(day.Records)
	}

	return total
}
