package boc

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Table is a parsed HTML table: rows of cell texts, trimmed at the edges only
type Table [][]string

// TablesFromDocument extracts every table of the document.
// Rows without cells are dropped
func TablesFromDocument(doc *goquery.Document) []Table {
	tables := make([]Table, 0, 4)

	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		var t Table

		tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			// Nested tables contribute their own rows
			if tr.Closest("table").Get(0) != tbl.Get(0) {
				return
			}

			cells := tr.ChildrenFiltered("td, th")
			if cells.Length() == 0 {
				return
			}

			row := make([]string, 0, cells.Length())

			cells.Each(func(_ int, cell *goquery.Selection) {
				row = append(row, strings.TrimSpace(cell.Text()))
			})

			t = append(t, row)
		})

		tables = append(tables, t)
	})

	return tables
}
