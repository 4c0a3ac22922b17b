// Copyright 2026 nupush
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package release

import (
	"regexp"
	"strings"
	"time"
)

// SuffixRule maps a branch name to a version suffix template. The template
// may contain a '{...}' date format placeholder and '*' commit hash
// placeholders.
type SuffixRule struct {
	BranchPattern string
	Template      string
}

// ParseSuffixRules parses comma-separated 'branch=template' entries,
// preserving their order. Entries without a '=' are ignored.
func ParseSuffixRules(raw string) []SuffixRule {
	var rules []SuffixRule
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		pattern, template, found := strings.Cut(entry, "=")
		if !found {
			continue
		}
		rules = append(rules, SuffixRule{
			BranchPattern: strings.TrimSpace(pattern),
			Template:      template,
		})
	}
	return rules
}

// SuffixTemplateFor selects the template of the first rule whose branch
// pattern prefix-matches the given branch. No match yields an empty template.
func SuffixTemplateFor(rules []SuffixRule, branch string) string {
	for _, rule := range rules {
		if strings.HasPrefix(branch, rule.BranchPattern) {
			return rule.Template
		}
	}
	return ""
}

var datePlaceholder = regexp.MustCompile(`\{([^{}]+)\}`)

// .NET style date format tokens, longest first so 'yyyy' is not consumed as
// two 'yy' tokens.
var dateTokens = []struct {
	token  string
	layout string
}{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MM", "01"},
	{"dd", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

// ComputeSuffix renders a suffix template. '{...}' placeholders are rendered
// as the given time in UTC using the enclosed date format tokens, and every
// '*' is replaced with the short form of the commit hash. A template without
// placeholders passes through unchanged.
func ComputeSuffix(template string, now time.Time, commitSHA string) string {
	rendered := datePlaceholder.ReplaceAllStringFunc(template, func(placeholder string) string {
		format := placeholder[1 : len(placeholder)-1]
		return renderDateFormat(format, now.UTC())
	})
	return strings.ReplaceAll(rendered, "*", shortSHA(commitSHA))
}

// BuildTagName substitutes every '*' in the tag format with the version and
// appends the computed suffix.
func BuildTagName(format string, version string, suffix string) string {
	return strings.ReplaceAll(format, "*", version) + suffix
}

func renderDateFormat(format string, now time.Time) string {
	layout := format
	for _, token := range dateTokens {
		layout = strings.ReplaceAll(layout, token.token, token.layout)
	}
	return now.Format(layout)
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
