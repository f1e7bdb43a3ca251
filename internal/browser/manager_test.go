// File: internal/browser/manager_test.go
package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avikamboj/ordersync-cli/internal/config"
)

func TestExecFlags(t *testing.T) {
	t.Run("headless defaults", func(t *testing.T) {
		flags := execFlags(config.BrowserConfig{Headless: true})
		assert.Equal(t, true, flags["headless"])
		assert.Equal(t, true, flags["disable-gpu"])
		assert.NotContains(t, flags, "ignore-certificate-errors")
	})

	t.Run("headful keeps gpu", func(t *testing.T) {
		flags := execFlags(config.BrowserConfig{Headless: false})
		assert.Equal(t, false, flags["headless"])
		assert.Equal(t, false, flags["disable-gpu"])
	})

	t.Run("tls and cache toggles", func(t *testing.T) {
		flags := execFlags(config.BrowserConfig{IgnoreTLSErrors: true, DisableCache: true})
		assert.Equal(t, true, flags["ignore-certificate-errors"])
		assert.Equal(t, true, flags["disable-application-cache"])
	})
}
