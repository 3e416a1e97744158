// SPDX-License-Identifier: MIT

package main

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upper = cases.Upper(language.Und)

// clearName filters a TEXT_LINE string down to the character set
// usable in a filename: letters and digits survive (uppercased via
// golang.org/x/text/cases rather than a byte-range hack), parentheses,
// spaces and control characters are dropped, and everything else collapses
// to an underscore. Matches sgd.c's clearstr(), truncated to the same
// 15-character budget as its 16-byte stack buffer.
func clearName(s string) string {
	const maxLen = 15
	var b strings.Builder
	for _, r := range upper.String(s) {
		switch {
		case r <= 32 || r == '(' || r == ')':
			continue
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		if b.Len() >= maxLen {
			break
		}
	}
	return b.String()
}

// getSetName returns the cleaned text of the first non-hyphenated
// TEXT_LINE child whose cleaned text is non-empty, or "" if the set
// has none (sets with no usable name
// are skipped entirely by the set engine, matching get_set_name()).
func getSetName(se *setEntity, d *directory) string {
	for _, idx := range se.entries {
		e, err := d.resolve(idx)
		if err != nil {
			continue
		}
		if e.isTextLine() && !strings.Contains(e.textLine.text, "-") {
			if name := clearName(e.textLine.text); name != "" {
				return name
			}
		}
	}
	return ""
}

// substituteHashTokens replaces every non-overlapping "###" run in a
// path template with the first three bytes of basename, matching
// sgd.c's process_files(): `for (p = buf; (p = strstr(p, "###"));
// p += 3) memcpy(p, s, 3);`. Because the replacement always copies
// exactly 3 bytes and the scan then skips past those 3 bytes, a
// longer run like "#####" only has its first "###" replaced, leaving
// the remaining two '#' untouched (there's no second complete "###"
// left to match). No substitution happens at all if basename is
// shorter than 3 bytes (sgd.c: `if (strlen(s) >= 3)`).
func substituteHashTokens(template, basename string) string {
	const token = "###"
	if len(basename) < 3 {
		return template
	}
	repl := basename[:3]
	var b strings.Builder
	rest := template
	for {
		idx := strings.Index(rest, token)
		if idx < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:idx])
		b.WriteString(repl)
		rest = rest[idx+3:]
	}
	return b.String()
}
