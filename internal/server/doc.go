// Package server exposes the document scanner as MCP (Model Context
// Protocol) tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - scan_detect_document: Find the document outline in one frame
//   - scan_quality: Sharpness and lighting scores for one frame
//   - scan_rectify: Perspective-correct a document into an upright image
//   - scan_replay: Run a full capture session over a sequence of frames
//   - scan_default_config: Report the default scanner configuration
//
// # Frame Caching
//
// Frames are loaded through an in-memory cache keyed by path, so repeated
// calls on the same file decode it once. The cache lives as long as the
// server.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure), -32602 (invalid params) or
//     -32601 (unknown method)
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(cfg, ops, logger)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
