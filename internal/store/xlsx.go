package store

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// xlsxHeader is the export column set, mirroring the leads table.
var xlsxHeader = []string{
	"Name", "Address", "Phone", "Email", "Website", "Category",
	"Rating", "Rating Count", "Opening Hours", "Latitude", "Longitude",
	"Quality Score", "Quality Tier", "Search Term", "Search Location",
	"Captured At", "Notes",
}

// ExportXLSX writes the leads matching filter to an XLSX file at path,
// ordered by quality score descending (ListLeads order).
func ExportXLSX(ctx context.Context, st Store, path string, filter LeadFilter) error {
	leads, err := st.ListLeads(ctx, filter)
	if err != nil {
		return eris.Wrap(err, "export: list leads")
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range xlsxHeader {
		header.AddCell().SetString(h)
	}

	for _, sl := range leads {
		lead := sl.Lead
		row := sheet.AddRow()
		row.AddCell().SetString(lead.Name)
		row.AddCell().SetString(lead.Address)
		row.AddCell().SetString(lead.Phone)
		row.AddCell().SetString(lead.Email)
		row.AddCell().SetString(lead.Website)
		row.AddCell().SetString(lead.Category)
		row.AddCell().SetFloat(lead.Rating)
		row.AddCell().SetInt(lead.RatingCount)
		row.AddCell().SetString(lead.OpeningHours)
		if lead.Location != nil {
			row.AddCell().SetString(strconv.FormatFloat(lead.Location.Lat, 'f', 6, 64))
			row.AddCell().SetString(strconv.FormatFloat(lead.Location.Lng, 'f', 6, 64))
		} else {
			row.AddCell().SetString("")
			row.AddCell().SetString("")
		}
		row.AddCell().SetFloat(lead.Score)
		row.AddCell().SetString(strings.ToUpper(string(lead.Tier)))
		row.AddCell().SetString(sl.SearchTerm)
		row.AddCell().SetString(sl.SearchLocation)
		row.AddCell().SetString(sl.CapturedAt.UTC().Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(sl.Notes)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
