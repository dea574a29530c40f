// Package export writes merged local union records to an .xlsx workbook.
//
// Records are flattened into exploded rows: one row per county, with the local's
// fields repeated on each row. A local without county data still gets one row with
// empty county cells, so every record appears in the sheet. Each distinct
// classification also gets its own boolean column.
package export
