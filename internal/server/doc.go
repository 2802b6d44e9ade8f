// Package server implements the HTTP server using Echo framework.
//
// Routes: read surface (/api/mentions, /api/timeseries, /api/answered,
// /api/summary, /api/meta, /api/insights), write surface (/api/override,
// /api/compare), observability (/healthz, /metrics).
package server
