// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/lead-agent/internal/snapshot"
	"github.com/jonathan/lead-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxEventsToShow is the default number of timeline events to display
	maxEventsToShow = 10
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintQualification outputs a human-readable summary of a qualification
// record, flagging degraded fields and fallback records.
func (p *Printer) PrintQualification(record *types.QualificationRecord, degraded []string, fallback bool) {
	if record == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Lead:        %s\n", record.LeadID))
	sb.WriteString(fmt.Sprintf("Priority:    %s\n", record.Priority))
	sb.WriteString(fmt.Sprintf("Score:       %d/100\n", record.LeadScore))
	if record.Disposition != "" {
		sb.WriteString(fmt.Sprintf("Disposition: %s (confidence %d)\n", record.Disposition, record.DispositionConfidence))
	}
	if record.Sentiment != "" {
		sb.WriteString(fmt.Sprintf("Sentiment:   %s\n", record.Sentiment))
	}
	if record.Urgency != "" {
		sb.WriteString(fmt.Sprintf("Urgency:     %s\n", record.Urgency))
	}
	if record.Intent != "" {
		sb.WriteString(fmt.Sprintf("Intent:      %s\n", record.Intent))
	}
	sb.WriteString(fmt.Sprintf("Next action: %s\n", record.NextAction))
	if record.Reasoning != "" {
		sb.WriteString(fmt.Sprintf("Reasoning:   %s\n", record.Reasoning))
	}

	if fallback {
		sb.WriteString("\n⚠ fallback record: model response unavailable\n")
	} else if len(degraded) > 0 {
		sb.WriteString(fmt.Sprintf("\n⚠ defaulted fields: %s\n", strings.Join(degraded, ", ")))
	}

	p.printBox("LEAD QUALIFICATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBeforeAfter outputs the baseline and current CRM views side by side,
// one field per line.
func (p *Printer) PrintBeforeAfter(before, after *snapshot.View) {
	if before == nil || after == nil {
		return
	}

	var sb strings.Builder
	writeRow := func(label, from, to string) {
		if from == to {
			sb.WriteString(fmt.Sprintf("%-12s %s\n", label+":", to))
			return
		}
		sb.WriteString(fmt.Sprintf("%-12s %s → %s\n", label+":", from, to))
	}

	writeRow("Name", before.Name, after.Name)
	writeRow("Company", before.Company, after.Company)
	writeRow("Score", fmt.Sprintf("%d", before.LeadScore), fmt.Sprintf("%d", after.LeadScore))
	writeRow("Priority", before.Priority, after.Priority)
	writeRow("Disposition", before.Disposition, after.Disposition)
	writeRow("Next action", before.NextAction, after.NextAction)
	if after.Reasoning != "" {
		sb.WriteString(fmt.Sprintf("%-12s %s\n", "Reasoning:", after.Reasoning))
	}

	p.printBox("BEFORE → AFTER", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTimeline outputs the most recent interaction events for a lead.
func (p *Printer) PrintTimeline(events []types.InteractionEvent) {
	if len(events) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total events: %d\n\n", len(events)))

	start := 0
	if len(events) > maxEventsToShow {
		start = len(events) - maxEventsToShow
		sb.WriteString(fmt.Sprintf("... %d earlier events omitted\n\n", start))
	}
	for _, ev := range events[start:] {
		sb.WriteString(fmt.Sprintf("#%d  %s\n", ev.Sequence, ev.EventType))
		sb.WriteString(fmt.Sprintf("    %s\n", ev.Timestamp.Format("2006-01-02 15:04:05")))
		if summary := summarizePayload(ev.Payload); summary != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", summary))
		}
	}

	p.printBox("INTERACTION TIMELINE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintLeads outputs a one-line-per-lead listing.
func (p *Printer) PrintLeads(leads []types.Lead) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total leads: %d\n", len(leads)))
	for _, lead := range leads {
		sb.WriteString(fmt.Sprintf("\n%s\n", lead.Email))
		sb.WriteString(fmt.Sprintf("  id: %s\n", lead.LeadID))
		if lead.Name != "" || lead.Company != "" {
			sb.WriteString(fmt.Sprintf("  %s @ %s\n", lead.Name, lead.Company))
		}
	}
	p.printBox("LEADS", strings.TrimSuffix(sb.String(), "\n"))
}

// summarizePayload renders a compact key=value line for a few well-known
// payload fields, keys sorted for stable output.
func summarizePayload(payload map[string]any) string {
	if len(payload) == 0 {
		return ""
	}
	known := []string{"priority", "lead_score", "disposition", "intent", "error"}
	var parts []string
	for _, key := range known {
		if v, ok := payload[key]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", key, v))
		}
	}
	if len(parts) == 0 {
		keys := make([]string, 0, len(payload))
		for k := range payload {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i == 3 {
				break
			}
			parts = append(parts, fmt.Sprintf("%s=%v", k, payload[k]))
		}
	}
	return strings.Join(parts, " ")
}
