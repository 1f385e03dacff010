package cycle

import (
	"fmt"
	"time"
)

// Config holds the cycle cadence and the order and product sync limits.
type Config struct {
	// IntervalSeconds is the time between the starts of two cycles.
	IntervalSeconds int `mapstructure:"interval_seconds" default:"60"`
	// OrderWindow is how many of the latest Source orders each cycle assembles.
	OrderWindow int `mapstructure:"order_window" default:"10"`
	// ProductPageSize is the page size of the product listing.
	ProductPageSize int `mapstructure:"product_page_size" default:"50"`
	// MinimumStock is sent with every part created in Target.
	MinimumStock int `mapstructure:"minimum_stock" default:"10"`
}

// Interval returns the cycle interval.
func (c Config) Interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Validate checks the limits.
func (c Config) Validate() error {
	if c.IntervalSeconds < 0 {
		return fmt.Errorf("sync: interval_seconds must not be negative")
	}
	if c.OrderWindow < 0 || c.ProductPageSize < 0 || c.MinimumStock < 0 {
		return fmt.Errorf("sync: order_window, product_page_size and minimum_stock must not be negative")
	}
	return nil
}
