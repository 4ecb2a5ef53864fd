package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// StripTags 去掉用户输入中的所有 HTML 标签，保留纯文本
func StripTags(source string) string {
	sanitized := policy.Sanitize(source)
	// StrictPolicy escapes entities, the stored text stays plain
	return strings.TrimSpace(html.UnescapeString(sanitized))
}
