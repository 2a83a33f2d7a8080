// Package exporter writes the merged table and the dashboard views to
// files.
//
// CSVWriter: core CSV writing with optional UTF-8 BOM, append mode and a
// streaming writer for large outputs. WriteFrame produces the flat export
// of the merged table.
//
// ViewExporter: writes the numeric table behind each dashboard view to its
// own CSV file.
//
// WorkbookRenderer: draws the dashboard into an xlsx workbook with one
// sheet and native chart per view.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths.BaseDir, logger)
//	err := writer.WriteFrame("data/converted/merged_output.csv", merged)
//
//	renderer := exporter.NewWorkbookRenderer(logger)
//	err = renderer.SaveAs("data/reports/dashboard.xlsx", dashboard)
package exporter
