package provider

import "net/url"

// redact drops credentials carried in the query string of u.
func redact(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	q := parsed.Query()
	for _, k := range []string{"token", "apikey", "api_key"} {
		if q.Has(k) {
			q.Set(k, "xxx")
		}
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}
