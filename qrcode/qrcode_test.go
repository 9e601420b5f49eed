package qrcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageURL(t *testing.T) {
	b := NewURLBuilder("https://api.qrserver.com/v1/create-qr-code/")

	t.Run("encodes the ticket number", func(t *testing.T) {
		url := b.ImageURL("KR2025ABC123", 200)
		assert.Equal(t, "https://api.qrserver.com/v1/create-qr-code/?size=200x200&data=KR2025ABC123", url)
	})

	t.Run("escapes reserved characters", func(t *testing.T) {
		url := b.ImageURL("a b&c", 100)
		assert.Contains(t, url, "data=a+b%26c")
	})

	t.Run("falls back to the default size", func(t *testing.T) {
		url := b.ImageURL("x", 0)
		assert.Contains(t, url, "size=200x200")
	})
}
