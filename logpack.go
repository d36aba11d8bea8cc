// Package logpack is a client-side structured logging SDK. Applications
// record events on a Channel; the channel gates them by severity, applies
// an optional filter, encodes them with the SDK's msgpack codec and hands
// the bytes to a transport.
package logpack

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/logpack/logpack-go/config"
	"github.com/logpack/logpack-go/encoding/msgpack"
	"github.com/logpack/logpack-go/event"
	"github.com/logpack/logpack-go/filter"
	"github.com/logpack/logpack-go/logging"
	"github.com/logpack/logpack-go/transport"
)

// ChannelOptions configures a Channel.
type ChannelOptions struct {
	// Scope is stamped on every event the channel records.
	Scope string

	// MinLevel is the least severe level the channel forwards.
	MinLevel event.Level

	// Filter optionally restricts forwarded events further.
	Filter *filter.Filter

	// Transport receives the encoded events. Required.
	Transport transport.Transport

	// Logger receives the SDK's own diagnostics. Defaults to
	// logging.Noop.
	Logger logging.Logger

	// Now is the event timestamp source, for tests. Defaults to
	// time.Now.
	Now func() time.Time
}

// Channel is the application-facing logging facade. Safe for concurrent
// use when its transport is.
type Channel struct {
	scope  string
	min    event.Level
	filter *filter.Filter
	tr     transport.Transport
	logger logging.Logger
	now    func() time.Time
}

// NewChannel returns a Channel for the given options.
func NewChannel(o ChannelOptions) (*Channel, error) {
	if o.Transport == nil {
		return nil, fmt.Errorf("logpack: a channel requires a transport")
	}
	if o.Logger == nil {
		o.Logger = logging.Noop{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return &Channel{
		scope:  o.Scope,
		min:    o.MinLevel,
		filter: o.Filter,
		tr:     o.Transport,
		logger: o.Logger,
		now:    o.Now,
	}, nil
}

// FromConfig builds a Channel from a validated configuration, compiling
// its filter and constructing its transport.
func FromConfig(c config.Config, logger logging.Logger) (*Channel, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	o := ChannelOptions{
		Scope:    c.Scope,
		MinLevel: c.Level(),
		Logger:   logger,
	}

	if c.Filter != "" {
		f, err := filter.Compile(c.Filter)
		if err != nil {
			return nil, err
		}
		o.Filter = f
	}

	switch c.Transport {
	case config.TransportHTTP:
		o.Transport = transport.NewHTTP(http.DefaultClient, c.Endpoint)
	default: // config.TransportMemory, per Validate
		o.Transport = transport.NewBuffer()
	}

	return NewChannel(o)
}

// Log records one event. Events below the channel's minimum level, or not
// matching its filter, are dropped without error. Encode and transport
// failures drop the event and are returned to the caller.
func (c *Channel) Log(ctx context.Context, level event.Level, message string, metadata map[string]any) error {
	if level < c.min {
		return nil
	}

	e := event.Event{
		Time:     c.now(),
		Level:    level,
		Scope:    c.scope,
		Message:  message,
		Metadata: metadata,
	}

	if c.filter != nil {
		ok, err := c.filter.Match(e)
		if err != nil {
			c.logger.Logf(logging.Warn, "dropping event, filter failed: %v", err)
			return err
		}
		if !ok {
			return nil
		}
	}

	w := msgpack.NewWriter()
	if err := e.Encode(w); err != nil {
		c.logger.Logf(logging.Warn, "dropping event, encode failed: %v", err)
		return err
	}

	if err := c.tr.Send(ctx, w.Bytes()); err != nil {
		c.logger.Logf(logging.Error, "send failed: %v", err)
		return err
	}
	return nil
}

// Debug records a DEBUG event.
func (c *Channel) Debug(ctx context.Context, message string, metadata map[string]any) error {
	return c.Log(ctx, event.LevelDebug, message, metadata)
}

// Info records an INFO event.
func (c *Channel) Info(ctx context.Context, message string, metadata map[string]any) error {
	return c.Log(ctx, event.LevelInfo, message, metadata)
}

// Warn records a WARN event.
func (c *Channel) Warn(ctx context.Context, message string, metadata map[string]any) error {
	return c.Log(ctx, event.LevelWarn, message, metadata)
}

// Error records an ERROR event.
func (c *Channel) Error(ctx context.Context, message string, metadata map[string]any) error {
	return c.Log(ctx, event.LevelError, message, metadata)
}

// Critical records a CRITICAL event.
func (c *Channel) Critical(ctx context.Context, message string, metadata map[string]any) error {
	return c.Log(ctx, event.LevelCritical, message, metadata)
}

// Close closes the channel's transport.
func (c *Channel) Close() error {
	return c.tr.Close()
}
