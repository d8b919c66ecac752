package logger

import (
	"fmt"
	"time"
)

const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

func stamp() string {
	return time.Now().Format("15:04:05")
}

func line(color, symbol, tag, msg string) {
	fmt.Printf("%s%s%s %s%s%s %s[%s]%s %s\n", dim, stamp(), reset, color, symbol, reset, bold, tag, reset, msg)
}

// Info logs a neutral progress message under a component tag.
func Info(tag, msg string) {
	line(cyan, "•", tag, msg)
}

// Success logs a completed step.
func Success(tag, msg string) {
	line(green, "✓", tag, msg)
}

// Warn logs a non-fatal problem.
func Warn(tag, msg string) {
	line(yellow, "!", tag, msg)
}

// Error logs a failure.
func Error(tag, msg string) {
	line(red, "✗", tag, msg)
}

// Banner prints the startup header with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("\n%s%sCS2 Trade-Up Calculator%s %s%s%s\n\n", bold, cyan, reset, dim, version, reset)
}

// Server prints the listen address once the HTTP server is up.
func Server(addr string) {
	fmt.Printf("%s➜%s Listening on %shttp://%s%s\n", green, reset, bold, addr, reset)
}

// Section prints an underlined section title for grouped stats output.
func Section(title string) {
	fmt.Printf("\n%s%s%s\n", bold, title, reset)
}

// Stats prints a single aligned key/value stat line.
func Stats(key string, value interface{}) {
	fmt.Printf("  %s%-16s%s %v\n", dim, key, reset, value)
}
