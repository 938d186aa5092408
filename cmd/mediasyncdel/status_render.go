package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 18
	statusIndent     = "  "
)

type statusLine struct {
	label   string
	kind    statusKind
	message string
}

func renderStatusLine(line statusLine, colorize bool) string {
	body := fmt.Sprintf("[%s]", statusKindLabel(line.kind))
	if line.message != "" {
		body += " " + line.message
	}
	rendered := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, line.label+":", body)
	if colorize {
		if color := statusKindColor(line.kind); color != "" {
			return color + rendered + ansiReset
		}
	}
	return rendered
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSection(w io.Writer, title string, lines []statusLine, colorize bool) {
	heading := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(heading))
	if colorize {
		heading = ansiBlue + heading + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	fmt.Fprintln(w, heading)
	fmt.Fprintln(w, rule)
	for _, line := range lines {
		fmt.Fprintln(w, renderStatusLine(line, colorize))
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
