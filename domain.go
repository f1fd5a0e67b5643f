package fetchcore

import "net/url"

// ExtractDomain parses rawURL and returns its canonical domain key:
// the hostname (port stripped, if any) lowercased with a single
// leading "www." stripped. Subdomains are never collapsed to the
// registrable domain — anti-bot protections often differ per
// subdomain.
func ExtractDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", Errorf(EBADREQUEST, "invalid url: %v", err)
	}
	if u.Hostname() == "" {
		return "", Errorf(EBADREQUEST, "url has no host")
	}
	return CanonicalDomain(u.Hostname()), nil
}
