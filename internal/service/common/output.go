package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// PrintTable はテーブル形式でデータを表示する
// 列幅は表示幅（全角文字は2）で計算する
func PrintTable(w io.Writer, title string, columns []TableColumn, data [][]string) {
	if title != "" {
		fmt.Fprintf(w, "\n%s:\n", title)
	}

	colWidths := make([]int, len(columns))
	for i, col := range columns {
		colWidths[i] = max(col.Width, runewidth.StringWidth(col.Header))
	}
	for _, row := range data {
		for i, cell := range row {
			if i < len(colWidths) && columns[i].Width == 0 {
				colWidths[i] = max(colWidths[i], runewidth.StringWidth(cell))
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.Reset()
		for i := range columns {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if columns[i].Width > 0 {
				cell = runewidth.Truncate(cell, columns[i].Width, "…")
			}
			sb.WriteString(runewidth.FillRight(cell, colWidths[i]))
			sb.WriteString(" ")
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}

	headers := make([]string, len(columns))
	separators := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Header
		separators[i] = strings.Repeat("-", colWidths[i])
	}
	writeRow(headers)
	writeRow(separators)
	for _, row := range data {
		writeRow(row)
	}
}

// DisplayList は汎用的なリスト表示関数
func DisplayList[T any](
	w io.Writer,
	items []T,
	title string,
	toTableData func([]T) ([]TableColumn, [][]string),
	opts *DisplayOptions,
) {
	if opts == nil {
		opts = &DisplayOptions{}
	}
	emptyMessage := opts.EmptyMessage
	if emptyMessage == "" {
		emptyMessage = "リソースが見つかりませんでした"
	}

	// フィルタ条件がある場合はタイトルに追加
	if len(opts.FilterMessages) > 0 {
		title = GenerateFilteredTitle(title, opts.FilterMessages...)
	}

	if len(items) == 0 {
		fmt.Fprintln(w, emptyMessage)
		return
	}

	columns, data := toTableData(items)
	PrintTable(w, title, columns, data)

	if opts.ShowCount {
		fmt.Fprintf(w, "\n合計: %d件\n", len(items))
	}
}

// wrapLine は1行を表示幅で分割する
func wrapLine(line string, width int) []string {
	if width <= 0 || runewidth.StringWidth(line) <= width {
		return []string{line}
	}

	var lines []string
	var current strings.Builder
	currentWidth := 0
	for _, r := range line {
		rw := runewidth.RuneWidth(r)
		if currentWidth+rw > width {
			lines = append(lines, current.String())
			current.Reset()
			currentWidth = 0
		}
		current.WriteRune(r)
		currentWidth += rw
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
