package core

import (
	"regexp"
	"strings"
)

const maxTagsPerNote = 20

var hashtagRe = regexp.MustCompile(`#([\p{L}\p{N}_]{1,32})`)

// ExtractTags returns the lower-cased, de-duplicated hashtags found in text,
// in order of first appearance.
func ExtractTags(text ...string) []string {
	seen := map[string]struct{}{}
	var out []string

	for _, s := range text {
		for _, m := range hashtagRe.FindAllStringSubmatch(s, -1) {
			if len(m) < 2 {
				continue
			}
			t := strings.ToLower(m[1])
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)

			if len(out) >= maxTagsPerNote {
				return out
			}
		}
	}

	return out
}
