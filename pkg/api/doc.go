// Package api serves brackets over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /api/championships/{id}/matches
//	GET  /api/championships/{id}/bracket
//	GET  /api/championships/{id}/layout?width=&height=&scroll_x=&scroll_y=
//	GET  /api/championships/{id}/bracket.{svg,png,pdf,dot,json}
//	GET  /api/championships/{id}/history?limit=
//	GET  /api/championships/{id}/live        (websocket)
//	POST /api/layout
//
// Errors are JSON objects {"code": ..., "message": ...} whose HTTP status
// is derived from the error code (see [StatusFor]).
//
// Concurrent requests for the same championship share one upstream fetch.
package api
