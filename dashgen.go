// Package dashgen turns a tabular dataset and a declarative configuration
// into a rendered, themed dashboard document.
//
// Usage:
//
//	import "github.com/dashgen-org/dashgen/engine"
//
//	dash, err := engine.Build(csvBytes, rawConfig,
//	    engine.WithFormat(dataset.FormatCSV),
//	    engine.WithLogger(logger),
//	)
//	html := dash.Document.Bytes()
//
// The engine takes raw data bytes (CSV, JSON, or Excel) plus a possibly
// partial configuration (metrics, charts, filters, style), fills the gaps
// with column-type heuristics, and returns a render-ready document along
// with the fully resolved configuration and any per-spec warnings.
//
// Data retrieval and HTTP serving are handled by callers. The engine never
// performs network I/O — all computation is local.
package dashgen
