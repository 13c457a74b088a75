package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	chromeMac    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	safariPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	firefoxLinux = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
)

func TestParseUserAgent(t *testing.T) {
	t.Run("empty header is an unknown device", func(t *testing.T) {
		d := ParseUserAgent("  ")
		assert.Equal(t, Device{}, d)
		assert.Equal(t, "Unknown Device", d.String())
	})

	t.Run("chrome on desktop names browser and os", func(t *testing.T) {
		d := ParseUserAgent(chromeMac)
		assert.Equal(t, "Chrome", d.Browser)
		assert.False(t, d.Mobile)
		assert.Contains(t, d.String(), "Chrome on ")
	})

	t.Run("safari on iphone is mobile", func(t *testing.T) {
		d := ParseUserAgent(safariPhone)
		assert.True(t, d.Mobile)
		assert.Contains(t, d.String(), "iPhone")
	})

	t.Run("firefox on linux", func(t *testing.T) {
		d := ParseUserAgent(firefoxLinux)
		assert.Equal(t, "Firefox", d.Browser)
		assert.Contains(t, d.OS, "Linux")
	})

	t.Run("rendering has no stray whitespace", func(t *testing.T) {
		s := ParseUserAgent("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36").String()
		assert.Equal(t, strings.TrimSpace(s), s)
		assert.NotContains(t, s, "  ")
	})
}

func TestDeviceString(t *testing.T) {
	assert.Equal(t, "Unknown on Linux", Device{OS: "Linux"}.String())
	assert.Equal(t, "Edge on Unknown", Device{Browser: "Edge"}.String())
}
