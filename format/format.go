// Package format converts model-generated markdown into the lightweight
// markup accepted by chat channels (single-asterisk bold, underscore italic,
// bullet lists). Replies without markdown markers pass through untouched.
package format

import (
	"regexp"
	"strings"
)

var markdownMarkers = []*regexp.Regexp{
	regexp.MustCompile(`\*\*`),
	regexp.MustCompile(`(?m)^#{1,6}\s`),
	regexp.MustCompile(`\[.*?\]\(.*?\)`),
	regexp.MustCompile(`!\[.*?\]\(.*?\)`),
	regexp.MustCompile(`\n\s*[-*]\s+`),
	regexp.MustCompile(`\n\s*\d+\.\s+`),
	regexp.MustCompile(`~~.*?~~`),
	regexp.MustCompile("```[\\s\\S]*?```"),
	regexp.MustCompile(`>\s+`),
}

var (
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}\s+(.*)$`)
	boldItalicRe = regexp.MustCompile(`\*\*\*([\s\S]+?)\*\*\*`)
	boldRe       = regexp.MustCompile(`\*\*([\s\S]+?)\*\*`)
	italicRe     = regexp.MustCompile(`\*([^*\n]+)\*`)
	strikeRe     = regexp.MustCompile(`~~([\s\S]+?)~~`)
	linkRe       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	imageRe      = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	listRe       = regexp.MustCompile(`(?m)^(\s*)[-*]\s+(.*)$`)
	quoteRe      = regexp.MustCompile(`(?m)^>\s+(.*)$`)
	fenceRe      = regexp.MustCompile("```[a-zA-Z0-9_-]*\\n([\\s\\S]*?)```")
	inlineCodeRe = regexp.MustCompile("`([^`\\n]+)`")
	hrRe         = regexp.MustCompile(`\n\s*(?:-{3,}|\*{3,})\s*\n`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// boldMark temporarily protects converted bold spans so the italic pass
// does not re-interpret their single asterisks.
const boldMark = "\x00"

// IsMarkdown reports whether text contains markdown syntax worth converting.
func IsMarkdown(text string) bool {
	if text == "" {
		return false
	}
	for _, re := range markdownMarkers {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// ToChat rewrites markdown into chat markup. Plain text is returned as-is.
func ToChat(text string) string {
	if !IsMarkdown(text) {
		return text
	}

	out := text
	out = hrRe.ReplaceAllString(out, "\n— — —\n")
	out = headingRe.ReplaceAllString(out, boldMark+"$1"+boldMark)
	out = boldItalicRe.ReplaceAllString(out, boldMark+"_${1}_"+boldMark)
	out = boldRe.ReplaceAllString(out, boldMark+"$1"+boldMark)
	out = italicRe.ReplaceAllString(out, "_${1}_")
	out = strings.ReplaceAll(out, boldMark, "*")
	out = strikeRe.ReplaceAllString(out, "~$1~")
	out = imageRe.ReplaceAllString(out, "$1 ($2)")
	out = linkRe.ReplaceAllString(out, "$1 ($2)")
	out = listRe.ReplaceAllString(out, "$1• $2")
	out = quoteRe.ReplaceAllString(out, "❯ $1")
	out = fenceRe.ReplaceAllStringFunc(out, func(m string) string {
		code := fenceRe.FindStringSubmatch(m)[1]
		return "\n```\n" + strings.TrimSpace(code) + "\n```\n"
	})
	out = inlineCodeRe.ReplaceAllString(out, "```$1```")
	out = blankRunRe.ReplaceAllString(out, "\n\n")
	return out
}
