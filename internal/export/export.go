package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pfrederiksen/ibew-locals/internal/union"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName = "Locals"
	Extension = ".xlsx"

	ClassificationPrefix = "classification:"
)

var localColumns = []string{
	"local_id",
	"directory_id",
	"city",
	"state",
	"vp_district",
	"union",
	"unit_name",
	"location",
	"unionfacts_url",
	"member_count",
	"classifications",
}

var countyColumns = []string{
	"county_name",
	"county_district",
	"county_population",
	"county_sq_miles",
	"county_percent",
	"county_jurisdiction",
	"county_state",
}

// Table is the flattened sheet: a header and the data rows beneath it
type Table struct {
	Header []string
	Rows   [][]interface{}
}

// Flatten converts records into the exploded-row layout. Cells are nil where
// a value is absent (no member count, no county).
func Flatten(records []union.Record) Table {
	classes := classificationNames(records)

	header := make([]string, 0, len(localColumns)+len(classes)+len(countyColumns))
	header = append(header, localColumns...)
	for _, name := range classes {
		header = append(header, ClassificationPrefix+name)
	}
	header = append(header, countyColumns...)

	table := Table{Header: header}
	for _, rec := range records {
		prefix := localCells(rec, classes)

		if len(rec.Counties) == 0 {
			row := append(prefix, make([]interface{}, len(countyColumns))...)
			table.Rows = append(table.Rows, row)
			continue
		}

		for _, c := range rec.Counties {
			row := make([]interface{}, 0, len(header))
			row = append(row, prefix...)
			row = append(row, c.Name, c.District, c.Population, c.SqMiles, c.Percent, c.Jurisdiction, c.State)
			table.Rows = append(table.Rows, row)
		}
	}
	return table
}

// RowCount returns the number of data rows Flatten produces for records
func RowCount(records []union.Record) int {
	n := 0
	for _, rec := range records {
		if len(rec.Counties) == 0 {
			n++
			continue
		}
		n += len(rec.Counties)
	}
	return n
}

func localCells(rec union.Record, classes []string) []interface{} {
	var members interface{}
	if rec.MemberCount != nil {
		members = *rec.MemberCount
	}

	cells := []interface{}{
		rec.LocalID,
		rec.ID,
		rec.City,
		rec.State,
		rec.VPDistrict,
		rec.Union,
		rec.UnitName,
		rec.Location,
		rec.UnionFactsURL,
		members,
		strings.Join(rec.Classifications, ", "),
	}

	has := make(map[string]bool, len(rec.Classifications))
	for _, name := range rec.Classifications {
		has[name] = true
	}
	for _, name := range classes {
		cells = append(cells, has[name])
	}
	return cells
}

// classificationNames returns every classification seen across records, sorted
func classificationNames(records []union.Record) []string {
	seen := make(map[string]bool)
	var names []string
	for _, rec := range records {
		for _, name := range rec.Classifications {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// ValidatePath reports whether path names an .xlsx file
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("output path is empty")
	}
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return fmt.Errorf("output file must have a %s extension: %s", Extension, path)
	}
	return nil
}

// WriteXLSX writes records to a single-sheet workbook at path
func WriteXLSX(path string, records []union.Record) (err error) {
	table := Flatten(records)

	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing workbook %s: %w", path, closeErr)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(table.Header))
	for i, h := range table.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("addressing row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
