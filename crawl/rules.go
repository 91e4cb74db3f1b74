// Package crawl — URL filtering rules.
// Decides which discovered URLs are worth optimizing and normalizes them
// for deduplication.
package crawl

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// staticExtensions are file extensions to skip during crawling.
var staticExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true, ".bmp": true,
	".css": true, ".js": true, ".mjs": true, ".json": true, ".xml": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp4": true, ".webm": true, ".mp3": true, ".wav": true,
	".zip": true, ".tar": true, ".gz": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

// boilerplatePath matches pages with no content worth rewriting.
var boilerplatePath = regexp.MustCompile(`(?i)/(?:privacy(?:-policy)?|terms(?:-of-(?:service|use)|-and-conditions)?|cookies?(?:-policy)?|legal|login|log-in|signin|sign-in|register|signup|sign-up|logout|account|my-account|cart|checkout|basket|wp-admin|wp-login\.php|feed|search)(?:/|$)`)

// IsSameDomain checks if rawURL belongs to domain, treating a leading
// "www." on either side as equivalent.
func IsSameDomain(rawURL string, domain string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	return bareHost(parsed.Host) == bareHost(domain)
}

func bareHost(h string) string {
	return strings.TrimPrefix(strings.ToLower(h), "www.")
}

// IsStaticAsset checks if a URL points to a static asset (image, CSS, JS, etc.).
func IsStaticAsset(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	return staticExtensions[ext]
}

// IsBoilerplate reports whether rawURL is a legal, account or cart page.
func IsBoilerplate(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return boilerplatePath.MatchString(parsed.Path)
}

// ShouldSkip combines the static-asset and boilerplate rules.
func ShouldSkip(rawURL string) bool {
	return IsStaticAsset(rawURL) || IsBoilerplate(rawURL)
}

// NormalizeURL lowercases the host, strips the fragment and any trailing
// slash, and gives an empty path the root "/".
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	if parsed.Path == "" {
		parsed.Path = "/"
	}

	return parsed.String()
}
