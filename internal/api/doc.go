// Package api exposes the editor session over HTTP/JSON.
//
// Separation of Concerns
//
// The api package defines public JSON request and response types, maps
// engine errors to status codes, and hosts an HTTP server with minimal
// middleware. The session and engine packages remain unaware of HTTP.
//
// Versioning
//
// All routes are versioned under /v1.
//
// Error Model
//
// APIError carries a message and an RFC3339 timestamp. Unknown states or
// symbols map to 404, malformed names and bodies to 400, a missing start
// state or an unavailable conversion to 409, and an unavailable diagram
// renderer to 503.
//
// Endpoints
//
//   - GET    /v1/healthz
//   - GET    /v1/definition            formal definition of the active automaton
//   - GET    /v1/table                 transition table of the active automaton
//   - GET    /v1/automaton             serialized active automaton
//   - PUT    /v1/automaton             replace the NFA
//   - POST   /v1/states                {"name"}
//   - DELETE /v1/states/{name}
//   - POST   /v1/symbols               {"name"}
//   - DELETE /v1/symbols/{name}
//   - POST   /v1/transitions           {"from","symbol","to"}
//   - DELETE /v1/transitions?from=&symbol=&to=
//   - PUT    /v1/start                 {"name"}
//   - POST   /v1/finals/{name}/toggle
//   - POST   /v1/sample
//   - POST   /v1/reset
//   - POST   /v1/convert
//   - GET    /v1/mode, PUT /v1/mode    {"mode"}
//   - GET    /v1/dfa                   availability and labeling of the cached DFA
//   - POST   /v1/simulate              {"input"} against the active automaton
//   - POST   /v1/simulate/dfa          {"input"} against the cached DFA
//   - GET    /v1/analysis
//   - GET    /v1/diagram?mode=current|NFA|DFA&format=json|dot|image
package api
