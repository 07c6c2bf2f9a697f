package git

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/clouide/clouide/internal/models"
)

// userinfoPattern matches "scheme://user:secret@" in free text
var userinfoPattern = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9+.-]*://)[^/@\s]+@`)

// AuthURL returns rawURL with the credentials embedded as userinfo. URLs
// without a scheme are treated as https; non-http(s) URLs (ssh, file, local
// paths) are returned unchanged since userinfo means nothing to them.
func AuthURL(rawURL string, creds *models.Credentials) string {
	if creds == nil || creds.Username == "" {
		return rawURL
	}

	candidate := rawURL
	if !strings.Contains(candidate, "://") {
		if strings.HasPrefix(candidate, "/") || strings.HasPrefix(candidate, ".") || strings.Contains(candidate, "@") {
			return rawURL
		}
		candidate = "https://" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return rawURL
	}

	u.User = url.UserPassword(creds.Username, creds.Token)
	return u.String()
}

// CleanURL strips any userinfo from rawURL
func CleanURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}
	u.User = nil
	return u.String()
}

// Sanitize removes credentials from a message that may echo a URL or a
// command line. Known secrets are masked even outside of URLs.
func Sanitize(msg string, secrets ...string) string {
	msg = userinfoPattern.ReplaceAllString(msg, "${1}***@")
	for _, s := range secrets {
		if s == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, s, "***")
		if escaped := url.QueryEscape(s); escaped != s {
			msg = strings.ReplaceAll(msg, escaped, "***")
		}
	}
	return msg
}
