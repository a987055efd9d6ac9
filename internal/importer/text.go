package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	apperr "github.com/piwi3910/PadNest/internal/errors"
	"github.com/piwi3910/PadNest/internal/model"
)

// padLineRe matches "SIZExQTY" with x, X, × or * as separator.
var padLineRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*[xX×*]\s*(\d+)$`)

// ParsePadLine parses one "SIZExQTY" line such as "12.5x3".
func ParsePadLine(line string) (model.PadSpec, error) {
	s := strings.TrimSpace(line)
	m := padLineRe.FindStringSubmatch(s)
	if m == nil {
		return model.PadSpec{}, apperr.New(apperr.ErrCodeInvalidPadLine, "%q is not SIZExQTY", s)
	}
	size, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return model.PadSpec{}, apperr.Wrap(apperr.ErrCodeInvalidPadLine, err, "bad size in %q", s)
	}
	qty, err := strconv.Atoi(m[2])
	if err != nil {
		return model.PadSpec{}, apperr.Wrap(apperr.ErrCodeInvalidPadLine, err, "bad quantity in %q", s)
	}
	p := model.PadSpec{Size: size, Quantity: qty}
	if err := p.Validate(); err != nil {
		return model.PadSpec{}, apperr.Wrap(apperr.ErrCodeInvalidPadLine, err, "%q", s)
	}
	return p, nil
}

// ParsePadList reads one pad per line. Blank lines and lines starting with
// '#' are ignored; lines that do not parse are skipped with a warning.
// Repeated sizes stay separate entries in input order.
func ParsePadList(r io.Reader) ImportResult {
	result := ImportResult{}

	sc := bufio.NewScanner(r)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := ParsePadLine(line)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Line %d: skipped %q", lineNum, line))
			continue
		}
		result.Pads = append(result.Pads, p)
	}
	if err := sc.Err(); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read pad list: %v", err))
	}
	return result
}

// ParsePadText is ParsePadList over a string.
func ParsePadText(text string) ImportResult {
	return ParsePadList(strings.NewReader(text))
}

// ImportText imports a pad list file with one "SIZExQTY" per line.
func ImportText(path string) ImportResult {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	defer f.Close()
	return ParsePadList(f)
}
