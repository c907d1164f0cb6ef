package pages

import "strings"

// ConfigString returns the trimmed string value for key from page.Config or a fallback.
func ConfigString(p Page, key, fallback string) string {
	if p.Config != nil {
		if raw, ok := p.Config[key]; ok {
			if val, ok := raw.(string); ok {
				if trimmed := strings.TrimSpace(val); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return fallback
}

const (
	ConfigUserAgentKey      = "user_agent"
	ConfigAcceptLanguageKey = "accept_language"
	ConfigLinkURLKey        = "link_url"
)

// Headers builds the optional request header overrides from a page config
// (skips empty values).
func Headers(p Page) map[string]string {
	headers := make(map[string]string, 2)

	if v := ConfigString(p, ConfigUserAgentKey, ""); v != "" {
		headers["User-Agent"] = v
	}
	if v := ConfigString(p, ConfigAcceptLanguageKey, ""); v != "" {
		headers["Accept-Language"] = v
	}

	return headers
}
