package shortener

import "strings"

// Provider is one of the supported public link-shortening services.
type Provider int

const (
	ProviderUnknown Provider = iota
	IsGd
	DaGd
	ClckRu
	TinyURL
)

func (p Provider) String() string {
	switch p {
	case IsGd:
		return "Is.gd"
	case DaGd:
		return "Da.gd"
	case ClckRu:
		return "Clck.ru"
	case TinyURL:
		return "TinyURL"
	default:
		return "unknown"
	}
}

// Key is the lowercase identifier used in forms, config and the JSON API.
func (p Provider) Key() string {
	switch p {
	case IsGd:
		return "isgd"
	case DaGd:
		return "dagd"
	case ClckRu:
		return "clckru"
	case TinyURL:
		return "tinyurl"
	default:
		return ""
	}
}

// ParseProvider accepts either the display name ("Is.gd") or the key ("isgd").
func ParseProvider(name string) Provider {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "is.gd", "isgd":
		return IsGd
	case "da.gd", "dagd":
		return DaGd
	case "clck.ru", "clckru":
		return ClckRu
	case "tinyurl", "tinyurl.com":
		return TinyURL
	default:
		return ProviderUnknown
	}
}

// FormProviders are the services offered in the HTML form.
func FormProviders() []Provider {
	return []Provider{IsGd, DaGd, ClckRu}
}

// AllProviders includes TinyURL, which is only reachable through the API.
func AllProviders() []Provider {
	return []Provider{IsGd, DaGd, ClckRu, TinyURL}
}
