package metadata

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// Device is what a User-Agent header says about the client.
type Device struct {
	Browser string
	OS      string
	Mobile  bool
	Bot     bool
}

// ParseUserAgent reads the browser and OS out of a User-Agent header. An
// empty header yields the zero Device.
func ParseUserAgent(header string) Device {
	header = strings.TrimSpace(header)
	if header == "" {
		return Device{}
	}
	ua := useragent.New(header)
	browser, _ := ua.Browser()
	os := ua.OS()
	if os == "" {
		os = ua.Platform()
	}
	return Device{
		Browser: strings.TrimSpace(browser),
		OS:      strings.TrimSpace(os),
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}

// String renders "<browser> on <os>", or "Unknown Device" when neither is known.
func (d Device) String() string {
	if d.Browser == "" && d.OS == "" {
		return unknownDevice
	}
	browser, os := d.Browser, d.OS
	if browser == "" {
		browser = "Unknown"
	}
	if os == "" {
		os = "Unknown"
	}
	return browser + " on " + os
}
