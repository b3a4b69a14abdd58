package urlutil

import (
	"crypto/md5"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Normalize canonicalizes a URL for dedupe and storage keys: drops the
// fragment, strips a leading www, defaults the scheme to https.
func Normalize(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}

	parsed.Fragment = ""

	parsed.Host = strings.TrimPrefix(parsed.Host, "www.")

	if parsed.Scheme == "" {
		parsed.Scheme = "https"
	}

	return parsed.String()
}

// ShouldFollow applies exclude patterns first, then follow patterns. An empty
// follow list means everything not excluded passes.
func ShouldFollow(urlStr string, followPatterns, excludePatterns []string) bool {
	for _, pattern := range excludePatterns {
		if MatchesPattern(urlStr, pattern) {
			return false
		}
	}

	if len(followPatterns) == 0 {
		return true
	}

	for _, pattern := range followPatterns {
		if MatchesPattern(urlStr, pattern) {
			return true
		}
	}

	return false
}

// MatchesPattern reports whether urlStr matches the regex pattern. Invalid
// patterns never match.
func MatchesPattern(urlStr string, pattern string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(urlStr)
}

// ContentHash returns a hex md5 of content, used to detect unchanged pages.
func ContentHash(content string) string {
	hash := md5.Sum([]byte(content))
	return fmt.Sprintf("%x", hash)
}
