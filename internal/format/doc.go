// Package format aligns the columns of model definition files.
//
// The pipeline is Parse -> ColumnWidths -> Render. Parse turns raw text into
// typed lines (blank, comment, record), ColumnWidths measures the widest field
// of every column across all records, and Render pads each field to its
// column width and joins fields with a two-space separator.
//
// Fields are delimited by runs of two or more spaces; a single space belongs
// to the field. A double space inside free text therefore splits the field.
// That is a property of the format, not something the parser tries to guess
// around.
//
// Назначение: чистая функция текст -> текст, без IO.
// Зависимости: github.com/rivo/uniseg, github.com/mattn/go-runewidth.
package format
