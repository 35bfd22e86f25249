// Package metrics provides a Prometheus exporter
// for serving metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
)

const (
	serviceName = "tailgen"

	// MetricsPath is the HTTP path metrics are served on.
	MetricsPath = "/metrics"

	readHeaderTimeout = 5 * time.Second
)

// Prometheus is an OpenTelemetry Prometheus exporter
// served over HTTP.
type Prometheus struct {
	logger    *zap.Logger
	address   string
	resources *resource.Resource
	registry  *promclient.Registry
	provider  *sdkmetric.MeterProvider
	server    *http.Server
	listener  net.Listener
	serveErr  chan error
}

// NewPrometheus creates a new Prometheus provider that will listen on host:port.
func NewPrometheus(logger *zap.Logger, host string, port int) (*Prometheus, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("get hostname: %w", err)
	}

	r := []attribute.KeyValue{
		semconv.ServiceNameKey.String(serviceName),
		semconv.HostNameKey.String(hostname),
	}

	return &Prometheus{
		logger:    logger.Named("metrics"),
		address:   net.JoinHostPort(host, strconv.Itoa(port)),
		resources: resource.NewWithAttributes(semconv.SchemaURL, r...),
		registry:  promclient.NewRegistry(),
	}, nil
}

// Start registers the global meter provider and begins serving
// metrics. It returns once the listener is bound.
func (p *Prometheus) Start(_ context.Context) error {
	// Instrument names already carry the tailgen prefix
	exporter, err := prometheus.New(prometheus.WithRegisterer(p.registry))
	if err != nil {
		return fmt.Errorf("create prometheus exporter: %w", err)
	}

	listener, err := net.Listen("tcp", p.address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", p.address, err)
	}

	p.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(p.resources),
	)
	otel.SetMeterProvider(p.provider)

	mux := http.NewServeMux()
	mux.Handle(MetricsPath, promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))

	p.listener = listener
	p.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	p.serveErr = make(chan error, 1)

	go func() {
		err := p.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("Metrics server failed", zap.Error(err))
		}
		p.serveErr <- err
	}()

	p.logger.Info("Serving metrics",
		zap.String("address", listener.Addr().String()),
		zap.String("path", MetricsPath),
	)

	return nil
}

// Addr returns the bound listen address, or the configured address
// if Start has not been called.
func (p *Prometheus) Addr() string {
	if p.listener != nil {
		return p.listener.Addr().String()
	}
	return p.address
}

// Shutdown stops the HTTP server and the meter provider.
func (p *Prometheus) Shutdown(ctx context.Context) error {
	var errs []error

	if p.server != nil {
		if err := p.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
		}
		<-p.serveErr
		p.server = nil
	}

	if p.provider != nil {
		if err := p.provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
		}
		p.provider = nil
	}

	return errors.Join(errs...)
}
