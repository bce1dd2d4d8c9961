// Package format renders fixed-width text tables for configuration
// previews and analysis reports.
package format

import "strings"

// Table renders header and data rows as a fixed-width text table.
// colMargin (clamped to [0, 9]) pads each side of every column. With
// border enabled the table is framed by '=' rules and '|' edges; colSep
// draws '|' between columns. A '=' rule always separates the header rows
// from the data rows when headers are present.
func Table(headerRows, dataRows [][]string, colMargin int, border, colSep bool) string {
	all := make([][]string, 0, len(headerRows)+len(dataRows))
	all = append(all, headerRows...)
	all = append(all, dataRows...)
	ncols := 0
	for _, row := range all {
		ncols = max(ncols, len(row))
	}
	if ncols == 0 {
		return ""
	}
	width := make([]int, ncols)
	for _, row := range all {
		for c, cell := range row {
			width[c] = max(width[c], len(cell))
		}
	}
	colMargin = max(0, min(colMargin, 9))
	pad := strings.Repeat(" ", colMargin)
	lbord := " " + pad
	rbord := pad + " "
	coldiv := pad + " " + pad
	if border {
		lbord = "|" + pad
		rbord = pad + "|"
	}
	if colSep {
		coldiv = pad + "|" + pad
	}
	wtot := len(lbord) + (ncols-1)*len(coldiv) + len(rbord)
	for _, w := range width {
		wtot += w
	}
	hbord := ""
	if border {
		hbord = strings.Repeat("=", wtot) + "\n"
	}
	hdiv := ""
	if len(headerRows) > 0 {
		hdiv = strings.Repeat("=", wtot) + "\n"
	}
	var b strings.Builder
	b.WriteString(hbord)
	for r, row := range all {
		if r == len(headerRows) {
			b.WriteString(hdiv)
		}
		b.WriteString(lbord)
		for c := 0; c < ncols; c++ {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", width[c]-len(cell)))
			if c+1 < ncols {
				b.WriteString(coldiv)
			}
		}
		b.WriteString(rbord)
		b.WriteByte('\n')
	}
	b.WriteString(hbord)
	return b.String()
}

// ResultTable renders Name/Value/Units rows produced by a results
// projection.
func ResultTable(rows [][]string, colMargin int, border, colSep bool) string {
	return Table([][]string{{"Name", "Value", "Units"}}, rows, colMargin, border, colSep)
}
