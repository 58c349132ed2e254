// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/collab-matcher/internal/reputation"
	"github.com/jonathan/collab-matcher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 64
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
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
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads line to the inner box width
func pad(line string) string {
	width := boxWidth - 4
	n := utf8.RuneCountInString(line)
	if n > width {
		runes := []rune(line)
		return string(runes[:width-3]) + "..."
	}
	return line + strings.Repeat(" ", width-n)
}

// PrintProject outputs a human-readable summary of the project being matched
func (p *Printer) PrintProject(project *types.ProjectProfile) {
	if project == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:     %s\n", project.ID))
	if project.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:  %s\n", project.Title))
	}
	sb.WriteString(fmt.Sprintf("Type:   %s\n", project.ProjectType))
	if project.PreferredYear != nil {
		sb.WriteString(fmt.Sprintf("Year:   %d\n", *project.PreferredYear))
	}
	if len(project.RequiredSkills) > 0 {
		sb.WriteString(fmt.Sprintf("Skills: %s\n", strings.Join(project.RequiredSkills, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Vector: %d dims", len(project.Embedding)))

	p.printBox("PROJECT", sb.String())
}

// PrintSummary outputs the counters of a match run
func (p *Printer) PrintSummary(summary types.MatchSummary) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Request:            %s\n", summary.RequestID))
	sb.WriteString(fmt.Sprintf("Candidates:         %d\n", summary.PoolSize))
	sb.WriteString(fmt.Sprintf("Missing embeddings: %d\n", summary.MissingEmbeddings))
	sb.WriteString(fmt.Sprintf("Zero embeddings:    %d\n", summary.ZeroEmbeddings))
	sb.WriteString(fmt.Sprintf("Passed gate:        %d (threshold %.2f)\n", summary.PassedGate, summary.Threshold))
	sb.WriteString(fmt.Sprintf("Scored:             %d\n", summary.Scored))
	sb.WriteString(fmt.Sprintf("Returned:           %d\n", summary.Returned))
	if summary.FallbackUsed {
		sb.WriteString("⚠ No candidate cleared the gate; closest candidates used\n")
	}
	if summary.Partial {
		sb.WriteString("⚠ Deadline reached; results are partial\n")
	}

	p.printBox("MATCH SUMMARY", sb.String())
}

// PrintResults outputs the ranked candidates with their per-signal breakdown
func (p *Printer) PrintResults(results []types.MatchResult) {
	if len(results) == 0 {
		p.printBox("RANKED CANDIDATES", "No candidates matched")
		return
	}

	var sb strings.Builder
	for i, r := range results {
		sb.WriteString(fmt.Sprintf("%d. %s (%s)  final %.4f\n", i+1, r.Profile.Name, r.CandidateID, r.FinalScore))
		sb.WriteString(fmt.Sprintf("   sem %.2f  skill %.2f  exp %.2f\n", r.Scores.Semantic, r.Scores.Skill, r.Scores.Experience))
		sb.WriteString(fmt.Sprintf("   year %.2f  rep %.2f  avail %.2f\n", r.Scores.Year, r.Scores.Reputation, r.Scores.Availability))
		if len(r.MatchedSkills) > 0 {
			skills := r.MatchedSkills
			suffix := ""
			if len(skills) > maxItemsToShow {
				suffix = fmt.Sprintf(" +%d more", len(skills)-maxItemsToShow)
				skills = skills[:maxItemsToShow]
			}
			sb.WriteString(fmt.Sprintf("   matched: %s%s\n", strings.Join(skills, ", "), suffix))
		}
		if r.Notes != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", r.Notes))
		}
		if i < len(results)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("RANKED CANDIDATES", sb.String())
}

// PrintRating outputs a candidate's smoothed rating
func (p *Printer) PrintRating(candidateID string, rating reputation.Rating) {
	content := fmt.Sprintf("Candidate: %s\nRating:    %.3f / 5\nRatings:   %d", candidateID, rating.GlobalRating, rating.RatingsCount)
	if rating.RatingsCount == 0 {
		content += "\nNo ratings yet; showing the prior"
	}
	p.printBox("REPUTATION", content)
}
