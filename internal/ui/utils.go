package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/forest-guardian/treeindex/internal/geoindex"
)

// Colors for consistent UI
const (
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorReset  = "\033[0m"
)

// in is shared so buffered input survives between prompts.
var in = bufio.NewReader(os.Stdin)

// SetInput replaces the reader prompts read from.
func SetInput(r io.Reader) { in = bufio.NewReader(r) }

// PrintWarning displays a warning message with consistent formatting
func PrintWarning(message string) {
	fmt.Printf("%s\nWarning:%s\n", ColorYellow, ColorReset)
	fmt.Printf("%s%s%s\n", ColorYellow, message, ColorReset)
}

// PrintError displays an error message with consistent formatting
func PrintError(message string) {
	fmt.Printf("\n%sError: %s%s\n", ColorRed, message, ColorReset)
}

// PrintSuccess displays a success message with consistent formatting
func PrintSuccess(message string) {
	fmt.Printf("\n%s%s%s\n", ColorGreen, message, ColorReset)
}

// PrintInfo displays an info message with consistent formatting
func PrintInfo(message string) {
	fmt.Printf("%s%s%s", ColorBlue, message, ColorReset)
}

// ErrInputClosed is returned once stdin is exhausted.
var ErrInputClosed = errors.New("input closed")

// readLine returns ErrInputClosed only when EOF arrives with nothing typed;
// a last line without a newline is still an answer.
func readLine(prompt string) (string, error) {
	PrintInfo(prompt)
	input, err := in.ReadString('\n')
	input = strings.TrimSpace(input)
	if err != nil && input == "" {
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", err
	}
	return input, nil
}

// ReadString reads a string from stdin with trimming
func ReadString(prompt string) string {
	s, _ := readLine(prompt)
	return s
}

// ReadStringDefault returns def when the answer is empty.
func ReadStringDefault(prompt, def string) string {
	if def != "" {
		prompt = fmt.Sprintf("%s[%s] ", prompt, def)
	}
	if s := ReadString(prompt); s != "" {
		return s
	}
	return def
}

// ReadInt reads an integer from stdin with validation
func ReadInt(prompt string, min, max int) (int, error) {
	input, err := readLine(prompt)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("value must be between %d and %d", min, max)
	}
	return value, nil
}

// ReadYesNo accepts y/yes/n/no, anything else is no.
func ReadYesNo(prompt string) bool {
	switch strings.ToLower(ReadString(prompt + "(y/n) ")) {
	case "y", "yes":
		return true
	}
	return false
}

// ParseExtent reads "left,bottom,right,top"; spaces are allowed as well as
// commas.
func ParseExtent(s string) (geoindex.Extent, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) != 4 {
		return geoindex.Extent{}, fmt.Errorf("invalid extent %q: want left,bottom,right,top", s)
	}
	var b [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geoindex.Extent{}, fmt.Errorf("invalid extent coordinate %q", f)
		}
		b[i] = v
	}
	if b[0] > b[2] || b[1] > b[3] {
		return geoindex.Extent{}, fmt.Errorf("invalid extent %q: left/bottom past right/top", s)
	}
	return geoindex.ExtentFromBounds(b), nil
}

// ReadExtent prompts for an extent.
func ReadExtent(prompt string) (geoindex.Extent, error) {
	return ParseExtent(ReadString(prompt))
}
