package ui

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// NewTable creates a report table with the house style
func NewTable(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// RenderTable writes a complete table in one call
func RenderTable(w io.Writer, headers []string, rows [][]string) {
	table := NewTable(w, headers)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
}
