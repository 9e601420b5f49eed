// Package qrcode builds URLs for an external QR image renderer. Ticket numbers
// are encoded so checkpoint staff can scan them during bib collection.
package qrcode

import (
	"fmt"
	"net/url"
)

// DefaultSize is the pixel size used on tickets when the caller does not pick one.
const DefaultSize = 200

// URLBuilder renders image URLs for a configured QR service endpoint.
type URLBuilder struct {
	apiURL string
}

// NewURLBuilder takes the QR service endpoint, e.g.
// https://api.qrserver.com/v1/create-qr-code/.
func NewURLBuilder(apiURL string) *URLBuilder {
	return &URLBuilder{apiURL: apiURL}
}

// ImageURL returns a URL serving a size x size QR image encoding value.
func (b *URLBuilder) ImageURL(value string, size int) string {
	if size <= 0 {
		size = DefaultSize
	}
	return fmt.Sprintf("%s?size=%dx%d&data=%s", b.apiURL, size, size, url.QueryEscape(value))
}
