package scanner

// This package re-exports types from internal/types for convenience.
// The canonical types live in internal/types to avoid import cycles.

import "github.com/pxkundu/awdx/internal/types"

type (
	Severity   = types.Severity
	Issue      = types.Issue
	ScanResult = types.ScanResult
	Report     = types.Report
	Mode       = types.Mode
)

const (
	ModeQuick         = types.ModeQuick
	ModeComprehensive = types.ModeComprehensive
)
