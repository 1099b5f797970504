package sanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripOnce sync.Once
	strip     *bluemonday.Policy

	contentOnce sync.Once
	content     *bluemonday.Policy

	labelOnce sync.Once
	label     *bluemonday.Policy
)

func stripPolicy() *bluemonday.Policy {
	stripOnce.Do(func() {
		strip = bluemonday.StrictPolicy()
	})
	return strip
}

// contentPolicy mirrors what untrusted authors may put in post content:
// formatting and links, never script, iframe or event handlers.
func contentPolicy() *bluemonday.Policy {
	contentOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
		content = policy
	})
	return content
}

// LabelPolicy returns the restricted policy applied to checkbox labels and
// field descriptions: bold, strong, links and line breaks.
func LabelPolicy() *bluemonday.Policy {
	labelOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements("b", "strong", "br", "em")
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
		policy.AllowStandardURLs()
		label = policy
	})
	return label
}

// StripTags removes every tag from value and returns plain text.
func StripTags(value string) string {
	return stripPolicy().Sanitize(value)
}
