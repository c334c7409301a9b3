// Package main hosts the video-combiner CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the CI-triggered processing pass (run),
// queue maintenance (queue add/list/retry/clear/health), and configuration
// scaffolding (config init/show). It centralizes configuration resolution,
// backend wiring, and structured logging setup so subcommands can focus on
// user experience instead of plumbing.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
