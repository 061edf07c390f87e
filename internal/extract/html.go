// Copyright 2025 Content Forge, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package extract

import (
	"html"
	"regexp"
	"strings"
)

var (
	scriptBlockRE = regexp.MustCompile(`(?is)<(script|style|noscript|head)\b[^>]*>.*?</(script|style|noscript|head)>`)
	htmlTagRE     = regexp.MustCompile(`(?s)<[^>]+>`)
	blockBreakRE  = regexp.MustCompile(`(?i)</?(p|div|br|li|tr|h[1-6]|section|article|blockquote)\b[^>]*>`)
	spaceRunRE    = regexp.MustCompile(`[ \t]+`)
	blankRunRE    = regexp.MustCompile(`\n{3,}`)
)

// StripHTML reduces an HTML document to its visible text. Script, style and
// head content is dropped, block-level boundaries become newlines, and
// entities are unescaped. The result keeps paragraph structure but no markup.
func StripHTML(doc string) string {
	doc = scriptBlockRE.ReplaceAllString(doc, " ")
	doc = blockBreakRE.ReplaceAllString(doc, "\n")
	doc = htmlTagRE.ReplaceAllString(doc, " ")
	doc = html.UnescapeString(doc)
	doc = spaceRunRE.ReplaceAllString(doc, " ")

	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	doc = strings.Join(lines, "\n")
	doc = blankRunRE.ReplaceAllString(doc, "\n\n")
	return strings.TrimSpace(doc)
}
