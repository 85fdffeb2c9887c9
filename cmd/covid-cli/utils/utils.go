package utils

import (
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

func NewTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

var (
	promptColor = color.New(color.FgCyan, color.Bold)
	errorColor  = color.New(color.FgRed)
	okColor     = color.New(color.FgGreen)
)

func Prompt(out io.Writer, format string, args ...any) {
	promptColor.Fprintf(out, format, args...)
}

func Error(out io.Writer, format string, args ...any) {
	errorColor.Fprintf(out, format+"\n", args...)
}

func Success(out io.Writer, format string, args ...any) {
	okColor.Fprintf(out, format+"\n", args...)
}
