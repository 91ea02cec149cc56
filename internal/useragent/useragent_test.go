package useragent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/serroba/linkboard/internal/useragent"
)

const (
	uaChromeWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaSafariIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaFirefoxLinux  = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	uaKindleTablet  = "Mozilla/5.0 (Linux; Android 9; KFONWI Tablet) AppleWebKit/537.36 (KHTML, like Gecko) Silk/120.0 Safari/537.36"
)

func TestDevice(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"desktop browser", uaChromeWindows, "Desktop"},
		{"iphone is mobile", uaSafariIPhone, "Mobile"},
		{"tablet token", uaKindleTablet, "Tablet"},
		{"empty string is desktop", "", "Desktop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, useragent.Device(tt.ua))
		})
	}
}

func TestBrowser(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"chrome", uaChromeWindows, "Chrome"},
		{"firefox", uaFirefoxLinux, "Firefox"},
		{"safari on iphone", uaSafariIPhone, "Safari"},
		// Edge advertises Chrome first, and the heuristic checks Chrome
		// first, so Edge is reported as Chrome.
		{"edge reports as chrome", uaChromeWindows + " Edg/120.0.0.0", "Chrome"},
		{"unknown", "curl/8.4.0", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, useragent.Browser(tt.ua))
		})
	}
}

func TestOS(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"windows", uaChromeWindows, "Windows"},
		{"linux", uaFirefoxLinux, "Linux"},
		// iPhone UAs contain "like Mac OS X", and the heuristic checks
		// Mac before iOS, so iPhones are reported as macOS.
		{"iphone reports as macos", uaSafariIPhone, "macOS"},
		{"android", "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36", "Linux"},
		{"unknown", "curl/8.4.0", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, useragent.OS(tt.ua))
		})
	}
}

func TestIsMobile(t *testing.T) {
	assert.True(t, useragent.IsMobile(uaSafariIPhone))
	assert.False(t, useragent.IsMobile(uaChromeWindows))
	assert.False(t, useragent.IsMobile(""))
}
