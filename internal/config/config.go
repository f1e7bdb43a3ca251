// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	Panel    PanelConfig    `mapstructure:"panel" yaml:"panel"`
	Carriers CarriersConfig `mapstructure:"carriers" yaml:"carriers"`
	Sync     SyncConfig     `mapstructure:"sync" yaml:"sync"`
	Batch    BatchConfig    `mapstructure:"batch" yaml:"batch"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
}

// LoggerConfig configures the global zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig controls the Chrome process driven through chromedp.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	DisableCache      bool          `mapstructure:"disable_cache" yaml:"disable_cache"`
	IgnoreTLSErrors   bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	Debug             bool          `mapstructure:"debug" yaml:"debug"`
}

// PanelConfig identifies the admin panel and the credentials used to enter it.
type PanelConfig struct {
	BaseURL       string        `mapstructure:"base_url" yaml:"base_url"`
	OrderListPath string        `mapstructure:"order_list_path" yaml:"order_list_path"`
	OrderPath     string        `mapstructure:"order_path" yaml:"order_path"`
	Username      string        `mapstructure:"username" yaml:"username"`
	Password      string        `mapstructure:"password" yaml:"password"`
	LoginRetries  int           `mapstructure:"login_retries" yaml:"login_retries"`
	LoginRetryGap time.Duration `mapstructure:"login_retry_gap" yaml:"login_retry_gap"`
}

// CarriersConfig locates the per-carrier pincode workbooks and carries the
// optional operator override.
type CarriersConfig struct {
	DTDCFile       string        `mapstructure:"dtdc_file" yaml:"dtdc_file"`
	DelhiveryFile  string        `mapstructure:"delhivery_file" yaml:"delhivery_file"`
	ReloadInterval time.Duration `mapstructure:"reload_interval" yaml:"reload_interval"`
	// Override pins every resolution to one carrier; unrecognized values are
	// ignored and normal resolution applies.
	Override string `mapstructure:"override" yaml:"override"`
}

// SyncConfig holds the timing knobs of the per-order sync workflow.
type SyncConfig struct {
	StepTimeout         time.Duration `mapstructure:"step_timeout" yaml:"step_timeout"`
	SettleWait          time.Duration `mapstructure:"settle_wait" yaml:"settle_wait"`
	DialogCloseWait     time.Duration `mapstructure:"dialog_close_wait" yaml:"dialog_close_wait"`
	InvoicePollTimeout  time.Duration `mapstructure:"invoice_poll_timeout" yaml:"invoice_poll_timeout"`
	InvoicePollInterval time.Duration `mapstructure:"invoice_poll_interval" yaml:"invoice_poll_interval"`
}

// BatchConfig filters and caps the rows processed in one run.
type BatchConfig struct {
	// IncludeOrders, when non-empty, restricts processing to the listed ids.
	IncludeOrders []string `mapstructure:"include_orders" yaml:"include_orders"`
	ExcludeOrders []string `mapstructure:"exclude_orders" yaml:"exclude_orders"`
	// ProcessCount caps how many rows are processed; zero means no cap.
	ProcessCount   int           `mapstructure:"process_count" yaml:"process_count"`
	PopupWait      time.Duration `mapstructure:"popup_wait" yaml:"popup_wait"`
	MinPopupLength int           `mapstructure:"min_popup_length" yaml:"min_popup_length"`
}

// OutputConfig controls where run summaries land.
type OutputConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// NewDefaultConfig creates a configuration struct populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with the defaults below.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "ordersync")
	v.SetDefault("logger.log_file", "ordersync.log")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_cache", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.navigation_timeout", "30s")
	v.SetDefault("browser.debug", false)

	// -- Panel --
	v.SetDefault("panel.order_list_path", "/admin/orders")
	v.SetDefault("panel.order_path", "/admin/orders/%s")
	v.SetDefault("panel.login_retries", 3)
	v.SetDefault("panel.login_retry_gap", "5s")

	// -- Carriers --
	v.SetDefault("carriers.dtdc_file", "data/dtdc_pincodes.xlsx")
	v.SetDefault("carriers.delhivery_file", "data/delhivery_pincodes.xlsx")
	v.SetDefault("carriers.reload_interval", "60s")
	v.SetDefault("carriers.override", "")

	// -- Sync --
	v.SetDefault("sync.step_timeout", "5s")
	v.SetDefault("sync.settle_wait", "2500ms")
	v.SetDefault("sync.dialog_close_wait", "4s")
	v.SetDefault("sync.invoice_poll_timeout", "8s")
	v.SetDefault("sync.invoice_poll_interval", "500ms")

	// -- Batch --
	v.SetDefault("batch.process_count", 0)
	v.SetDefault("batch.popup_wait", "2s")
	v.SetDefault("batch.min_popup_length", 150)

	// -- Output --
	v.SetDefault("output.dir", "reports")
}

// Validate checks the configuration for values that would make a run
// impossible or meaningless.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logger.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be 'console' or 'json', got %q", c.Logger.Format)
	}

	if c.Panel.BaseURL == "" {
		return fmt.Errorf("panel.base_url is required")
	}
	if !strings.Contains(c.Panel.OrderPath, "%s") {
		return fmt.Errorf("panel.order_path must contain a %%s placeholder for the order id")
	}
	if c.Panel.LoginRetries < 1 {
		return fmt.Errorf("panel.login_retries must be a positive integer")
	}

	if c.Carriers.ReloadInterval <= 0 {
		return fmt.Errorf("carriers.reload_interval must be positive")
	}

	if c.Sync.StepTimeout <= 0 || c.Sync.SettleWait < 0 {
		return fmt.Errorf("sync timing values must be positive")
	}
	if c.Sync.InvoicePollInterval <= 0 || c.Sync.InvoicePollTimeout < c.Sync.InvoicePollInterval {
		return fmt.Errorf("sync.invoice_poll_timeout must be at least one poll interval")
	}

	if c.Batch.ProcessCount < 0 {
		return fmt.Errorf("batch.process_count must not be negative")
	}
	if c.Batch.MinPopupLength < 0 {
		return fmt.Errorf("batch.min_popup_length must not be negative")
	}

	return nil
}
