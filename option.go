package atc

import (
	"github.com/viant/atc/service/dao"
	"github.com/viant/atc/service/dao/report"
	"github.com/viant/atc/service/event"
	"github.com/viant/atc/service/processor"
	"github.com/viant/atc/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option represents a Service option
type Option func(s *Service)

// WithOperate replaces the sleep based phase work of every flight.
func WithOperate(fn processor.OperateFunc) Option {
	return func(s *Service) {
		s.operate = fn
	}
}

// WithEventListener sets a handler receiving every event of the run in
// place of the default logging listener.
func WithEventListener(handler func(*event.Event[any])) Option {
	return func(s *Service) {
		s.eventListener = handler
	}
}

// WithReportStore sets where run reports are saved; it takes precedence
// over Config.ReportURL.
func WithReportStore(store dao.Service[string, report.Report]) Option {
	return func(s *Service) {
		s.reportStore = store
	}
}

// WithRunID overrides the generated run id.
func WithRunID(runID string) Option {
	return func(s *Service) {
		s.runID = runID
	}
}

// WithTracing configures OpenTelemetry tracing. An empty outputFile writes
// spans to stdout; only the first successful initialisation takes effect.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil {
			log.Warnf("failed to initialise tracing: %v", err)
		}
	}
}

// WithTracingExporter configures OpenTelemetry tracing with a custom exporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		if err := tracing.InitWithExporter(serviceName, serviceVersion, exporter); err != nil {
			log.Warnf("failed to initialise tracing: %v", err)
		}
	}
}
