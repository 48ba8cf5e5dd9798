package allowlist

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Checker decides whether a page belongs to a trusted domain
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new allowlist checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, 0, len(domains))
	for _, domain := range domains {
		d := strings.Trim(strings.ToLower(strings.TrimSpace(domain)), ".")
		if d != "" {
			normalized = append(normalized, d)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized trusted domain list", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsTrusted reports whether the URL host equals a listed domain or is a
// subdomain of one
func (c *Checker) IsTrusted(pageURL string) bool {
	if len(c.domains) == 0 {
		return false
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}

	for _, trusted := range c.domains {
		if host == trusted || strings.HasSuffix(host, "."+trusted) {
			if c.logger != nil {
				c.logger.Debug("Domain is trusted",
					zap.String("host", host),
					zap.String("url", pageURL))
			}
			return true
		}
	}

	return false
}
