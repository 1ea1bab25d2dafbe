// Package policy decides which navigation targets may render inside the
// main window and which are handed to the OS browser.
package policy

import (
	"net/url"
	"strings"
)

// Verdict is the outcome of classifying a URL.
type Verdict int

const (
	Allow Verdict = iota
	Deny
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	}
	return "unknown"
}

// allowedDomains are matched exactly or as a dot-boundary suffix. The bare
// apexes of the openai.com, oaistatic.com and oaiusercontent.com families are
// allowed along with their subdomains.
var allowedDomains = []string{
	"chatgpt.com",
	"chat.openai.com",
	"openai.com",
	"oaistatic.com",
	"oaiusercontent.com",
}

// AllowedDomains returns a copy of the host allow-list. The injected page
// script is rendered from this list.
func AllowedDomains() []string {
	out := make([]string, len(allowedDomains))
	copy(out, allowedDomains)
	return out
}

// AllowedHost reports whether host is an allow-list domain or one of its
// subdomains. An empty host is allowed.
func AllowedHost(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" {
		return true
	}
	for _, d := range allowedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Classify decides whether an in-page navigation target may stay in-app.
// Unparseable input is allowed so that legitimate navigation is never broken.
func Classify(raw string) Verdict {
	u, err := url.Parse(raw)
	if err != nil {
		return Allow
	}
	return classify(u)
}

// ClassifyNewWindow decides whether a new-window request may render in-app.
// Generated blob: and data: documents are always denied. A Deny from this
// function obliges the caller to hand the URL to the external browser.
func ClassifyNewWindow(raw string) Verdict {
	u, err := url.Parse(raw)
	if err != nil {
		return Allow
	}
	if generated(u) {
		return Deny
	}
	return classify(u)
}

// Generated reports whether raw is a blob: or data: document produced by the
// page itself. Such targets are never forwarded to the OS browser.
func Generated(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return generated(u)
}

func generated(u *url.URL) bool {
	switch strings.ToLower(u.Scheme) {
	case "blob", "data":
		return true
	}
	return false
}

func classify(u *url.URL) Verdict {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if AllowedHost(u.Hostname()) {
			return Allow
		}
		return Deny
	case "about", "data", "blob", "ws", "wss":
		return Allow
	}
	return Deny
}

// SameOrigin compares scheme, host and effective port of two URLs.
func SameOrigin(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return strings.EqualFold(a.Scheme, b.Scheme) &&
		strings.EqualFold(a.Hostname(), b.Hostname()) &&
		effectivePort(a) == effectivePort(b)
}

func effectivePort(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		return "80"
	case "https", "wss":
		return "443"
	}
	return ""
}

// ShouldOpenExternally is the link-click rule: a web link is diverted to the
// OS browser when its host is off the allow-list and it leaves the current
// page's origin. Unparseable targets are left to default handling. The page
// script mirrors this check only to cancel the click synchronously; the
// final decision is made here.
func ShouldOpenExternally(target, current string) bool {
	t, err := url.Parse(target)
	if err != nil {
		return false
	}
	switch strings.ToLower(t.Scheme) {
	case "http", "https":
	default:
		return false
	}
	if AllowedHost(t.Hostname()) {
		return false
	}
	c, err := url.Parse(current)
	if err != nil {
		return true
	}
	return !SameOrigin(t, c)
}
