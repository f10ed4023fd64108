// Package tracing wraps OpenTelemetry so that the resource manager and the
// flight lifecycle can open spans per phase and per resource request without
// importing the SDK directly. Until Init is called the global no-op provider
// is used and spans cost nothing.
package tracing
