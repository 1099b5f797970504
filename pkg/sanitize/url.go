package sanitize

import (
	"net/url"
	"strings"
)

var allowedSchemes = map[string]struct{}{
	"http": {}, "https": {}, "ftp": {}, "ftps": {}, "mailto": {}, "news": {},
	"irc": {}, "gopher": {}, "nntp": {}, "feed": {}, "telnet": {}, "mms": {},
	"rtsp": {}, "svn": {}, "tel": {}, "fax": {}, "xmpp": {}, "webcal": {},
	"urn": {},
}

// URL normalises a posted URL for storage. Bare hosts gain an http://
// prefix, spaces are percent encoded and only well known schemes survive.
// Relative paths, fragments and queries are kept as is.
func URL(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	for _, r := range value {
		if r < 0x20 || r == 0x7f || r == '<' || r == '>' || r == '"' || r == '\\' {
			return "", false
		}
	}
	value = strings.ReplaceAll(value, " ", "%20")

	if !strings.Contains(value, ":") && !strings.HasPrefix(value, "/") &&
		!strings.HasPrefix(value, "#") && !strings.HasPrefix(value, "?") &&
		!strings.HasPrefix(value, ".") {
		value = "http://" + value
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return "", false
	}
	if parsed.Scheme == "" {
		return value, true
	}
	if _, ok := allowedSchemes[strings.ToLower(parsed.Scheme)]; !ok {
		// host:port without a scheme parses with the host as scheme.
		if parsed.Opaque != "" && isPort(parsed.Opaque) {
			return URL("http://" + value)
		}
		return "", false
	}
	scheme := strings.ToLower(parsed.Scheme)
	if (scheme == "http" || scheme == "https") && parsed.Host == "" {
		return "", false
	}
	return value, true
}

func hasHTTPScheme(value string) bool {
	lower := strings.ToLower(value)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func isPort(value string) bool {
	end := strings.IndexAny(value, "/?#")
	if end >= 0 {
		value = value[:end]
	}
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
