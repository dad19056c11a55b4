// Package mcp implements the Model Context Protocol (MCP) server for
// stanchion using mcp-go.
//
// The server exposes two tools to connected AI assistants:
//
//   - assess_code_for_enterprise_standards: forwards infrastructure code
//     (primarily Azure Bicep/ARM templates) to the configured Azure OpenAI
//     deployment together with the enterprise standards prompt and returns
//     the model's compliance assessment verbatim.
//   - get_boilerplate_template: resolves the best-matching Azure Bicep
//     boilerplate for a free-form infrastructure description, using the
//     model for selection when configured and keyword matching otherwise.
//
// # Implementation
//
// The package uses the mcp-go library (github.com/mark3labs/mcp-go). The
// Server type wraps a *server.MCPServer and is constructed with functional
// options that supply the assessment and template components. Tool handlers
// report user-actionable failures as tool error results (IsError) with a nil
// Go error, so protocol-level errors stay reserved for transport problems.
//
// # Transports
//
// Two transports are supported, selectable at runtime:
//   - stdio: standard MCP stdio transport (default); suitable for local
//     assistant integration. Nothing but protocol frames is ever written to
//     stdout; logs go to stderr or the debug file.
//   - http: streamable HTTP transport for remote clients, shut down
//     gracefully on context cancellation.
//
// # Security
//
// Both tools are read-only: assessments and template lookups never mutate
// state. File access for operator-provided standards and templates goes
// through the fileops validation in the standards and templates packages.
package mcp
