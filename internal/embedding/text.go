package embedding

import (
	"sort"
	"strings"

	"github.com/jonathan/collab-matcher/internal/types"
)

// BuildProjectText renders a project as the sectioned text that gets embedded.
// Lists are de-duplicated and sorted so equal projects always embed the same text.
func BuildProjectText(p *types.ProjectProfile) string {
	if p == nil {
		return ""
	}

	var sections []string
	sections = appendSection(sections, "PROJECT TITLE", strings.TrimSpace(p.Title))
	sections = appendSection(sections, "PROJECT DESCRIPTION", strings.TrimSpace(p.Description))
	sections = appendSection(sections, "PROJECT REQUIREMENTS", joinSorted(p.RequiredSkills))
	sections = appendSection(sections, "PREFERRED TECHNOLOGIES", joinSorted(p.PreferredTechnologies))
	sections = appendSection(sections, "PROJECT DOMAINS", joinSorted(p.Domains))
	if p.ProjectType != "" {
		sections = appendSection(sections, "PROJECT TYPE", strings.ToUpper(string(p.ProjectType)))
	}
	return strings.Join(sections, "\n\n")
}

// BuildCandidateText renders a candidate in the same sectioned layout as projects
func BuildCandidateText(c *types.CandidateProfile) string {
	if c == nil {
		return ""
	}

	var sections []string

	categories := make([]string, 0, len(c.Skills))
	for category := range c.Skills {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var skillLines []string
	for _, category := range categories {
		if joined := joinSorted(c.Skills[category]); joined != "" {
			skillLines = append(skillLines, category+": "+joined)
		}
	}
	sections = appendSection(sections, "SKILLS", strings.Join(skillLines, "\n"))

	if c.Experience.Overall != "" {
		sections = appendSection(sections, "EXPERIENCE LEVEL", strings.ToUpper(string(c.Experience.Overall)))
	}

	domains := make([]string, 0, len(c.Experience.ByDomain))
	for domain, level := range c.Experience.ByDomain {
		domains = append(domains, domain+" ("+level+")")
	}
	sections = appendSection(sections, "DOMAIN EXPERIENCE", joinSorted(domains))

	return strings.Join(sections, "\n\n")
}

func appendSection(sections []string, heading, body string) []string {
	if body == "" {
		return sections
	}
	return append(sections, heading+":\n"+body)
}

// joinSorted trims, de-duplicates and sorts items, then joins them with commas
func joinSorted(items []string) string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
