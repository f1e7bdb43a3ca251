// File: internal/pincode/extractor.go

// Package pincode extracts Indian postal codes from unstructured address
// text, such as the body of an address popup scraped from the order panel.
package pincode

import (
	"regexp"
	"strings"
)

var (
	// labelledRe matches an explicit "Pincode" label followed by a 4-6 digit
	// run. Labelled matches are preferred; bare digit runs are ambiguous
	// (phone fragments, order numbers).
	labelledRe = regexp.MustCompile(`(?i)pincode\s*[:\-]?\s*(\d{4,6})(?:\D|$)`)
	// digitRunRe finds maximal digit runs; Extract keeps the ones whose
	// length fits a pincode.
	digitRunRe = regexp.MustCompile(`\d+`)
)

// Extract returns the distinct pincode candidates found in raw, in order of
// first appearance. Labelled "Pincode: NNNNNN" occurrences take priority;
// only when no labelled match exists does it fall back to scanning for bare
// 4-6 digit runs. An empty or digit-free input yields an empty slice.
func Extract(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var candidates []string
	for _, m := range labelledRe.FindAllStringSubmatch(raw, -1) {
		candidates = append(candidates, m[1])
	}
	if len(candidates) == 0 {
		for _, run := range digitRunRe.FindAllString(raw, -1) {
			if len(run) >= 4 && len(run) <= 6 {
				candidates = append(candidates, run)
			}
		}
	}

	return dedupe(candidates)
}

// First returns the primary pincode of raw, or "" when none is found.
func First(raw string) string {
	if candidates := Extract(raw); len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, p := range in {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
