// Package internal contains shared types and utilities for buildreth.
//
// It provides configuration resolution, host path and mount planning, the
// image build step, cleanup orchestration, and I/O abstractions used by the
// docker package.
package internal
