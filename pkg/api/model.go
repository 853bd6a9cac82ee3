package api

import (
	"roweditor/pkg/sheets"
)

// TableView is the JSON shape of a loaded sheet.
type TableView struct {
	Headers []string  `json:"headers"`
	Rows    []RowView `json:"rows"`
}

// RowView is one data row. Editable is a display hint only; writes are
// checked again by the proxy.
type RowView struct {
	RowIndex int      `json:"rowIndex"`
	Data     []string `json:"data"`
	Editable bool     `json:"editable"`
}

func tableToView(table *sheets.Table, identity string) TableView {
	view := TableView{
		Headers: table.Headers,
		Rows:    make([]RowView, 0, len(table.Rows)),
	}
	if view.Headers == nil {
		view.Headers = []string{}
	}
	for _, row := range table.Rows {
		view.Rows = append(view.Rows, RowView{
			RowIndex: row.Index,
			Data:     row.Data,
			Editable: sheets.IsOwner(row, identity),
		})
	}
	return view
}
