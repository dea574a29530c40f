// Package cli implements the command-line interface for ibew-locals.
//
// The cli package provides the Cobra-based root command. It validates the state
// list, output path and config before any request is made, runs the collection
// pipeline, writes the workbook, and prints a run summary (text table or JSON)
// to stdout. Logs go to stderr.
package cli
