// Package device classifies the browser the interface runs in.
package device

import "github.com/mssola/useragent"

// IsMobile reports whether userAgent belongs to a mobile browser, including the in-app browsers of
// mobile wallets. An empty user agent is not mobile.
func IsMobile(userAgent string) bool {
	if userAgent == "" {
		return false
	}

	return useragent.New(userAgent).Mobile()
}
