// Package api serves label layouts over HTTP.
//
// The server is a chi router in front of a [pipeline.Runner], so layouts
// requested over HTTP share the runner's feature indexes and result cache
// with every other request:
//
//	GET  /healthz           build information
//	GET  /v1/strategies     registered placement strategies
//	POST /v1/layout         {"map": {...}, "options": {...}} → layout result
//	POST /v1/query          {"map": {...}, "start": 1, "stop": 500} → features
//	GET  /metrics           go-metrics snapshot (when metrics are enabled)
//
// Errors are returned as {"error": {"code": "...", "message": "..."}} with a
// status derived from the error code: validation codes map to 400, missing
// resources to 404 and everything else to 500.
//
// [Client] is the matching Go client. It retries transient failures.
package api
