package parser

import "strings"

type match struct {
	needle string
	name   string
}

// Order matters: Edge and Opera also advertise Chrome, Chrome advertises Safari,
// Android advertises Linux.
var osMatches = []match{
	{"windows", "Windows"},
	{"iphone", "iOS"},
	{"ipad", "iOS"},
	{"mac os", "macOS"},
	{"android", "Android"},
	{"linux", "Linux"},
}

var browserMatches = []match{
	{"edg", "Edge"},
	{"opr/", "Opera"},
	{"firefox", "Firefox"},
	{"chrome", "Chrome"},
	{"safari", "Safari"},
	{"curl/", "curl"},
}

// ParseUserAgent classifies the client for audit events.
func ParseUserAgent(ua string) (os, browser string) {
	uaLower := strings.ToLower(ua)
	return lookup(uaLower, osMatches), lookup(uaLower, browserMatches)
}

func lookup(ua string, matches []match) string {
	for _, m := range matches {
		if strings.Contains(ua, m.needle) {
			return m.name
		}
	}
	return "Unknown"
}
