// Package exporter serializes the attendance result tables into their
// delivery formats: one styled Excel workbook (the primary artifact) and,
// optionally, one CSV file per table.
//
// The workbook upholds the presentational contract the report template
// expects: bold, centered, wrapped header row; frozen header; column
// widths auto-sized to content (sampled from at most the first 200 rows)
// and clamped to [10, 45] character-width units.
package exporter
