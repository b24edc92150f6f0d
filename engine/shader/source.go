package shader

import (
	"bufio"
	"strings"

	"github.com/hubastard/forge/engine/errs"
	"github.com/hubastard/forge/engine/fsys"
)

// Origin tells Split whether its data is a path or the shader text itself.
type Origin uint8

const (
	FromFile Origin = iota
	FromString
)

func (o Origin) String() string {
	if o == FromString {
		return "string"
	}
	return "file"
}

const (
	typeDirective = "#type"
	nameDirective = "#name"
)

// Split loads (for FromFile) and parses an annotated shader, returning the
// per-stage sources and the logical shader name.
func Split(data string, origin Origin) (Sources, string, error) {
	text := data
	if origin == FromFile {
		var err error
		if text, err = ReadSource(data); err != nil {
			return nil, "", err
		}
	}
	return ParseSource(text)
}

// ReadSource reads a shader file. A missing file is FileNotFound, a file
// that cannot be opened FileAccessDenied, anything else the generic
// SystemBase code.
func ReadSource(path string) (string, error) {
	b, err := fsys.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseSource splits annotated text into stages.
//
// "#type <stage>" selects the stage receiving the following lines, "#name
// <name>" sets the shader name (the last one wins). Every other non-empty
// line, with its leading whitespace trimmed, is appended to the current
// stage. Lines before the first #type are dropped.
func ParseSource(text string) (Sources, string, error) {
	if text == "" {
		return nil, "", errs.New(errs.InvalidArgument, "shader.ParseSource", "empty shader source")
	}

	sources := Sources{}
	name := ""
	current := StageUnknown

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimLeft(strings.TrimRight(sc.Text(), "\r"), " \t\v\f")

		switch {
		case isDirective(line, typeDirective):
			arg := directiveArg(line, typeDirective)
			k, ok := ParseStageKind(arg)
			if !ok {
				return nil, "", errs.New(errs.InvalidArgument, "shader.ParseSource",
					"line %d: unknown shader type %q", lineNo, arg)
			}
			current = k
		case isDirective(line, nameDirective):
			name = directiveArg(line, nameDirective)
		case line == "":
		case current != StageUnknown:
			sources[current] += line + "\n"
		}
	}
	if err := sc.Err(); err != nil {
		return nil, "", errs.Wrap(errs.SystemBase, "shader.ParseSource", err)
	}
	return sources, name, nil
}

// isDirective reports whether line is directive on its own or followed by
// whitespace, so "#namespace" is not "#name".
func isDirective(line, directive string) bool {
	rest, ok := strings.CutPrefix(line, directive)
	return ok && (rest == "" || strings.ContainsRune(" \t\v\f", rune(rest[0])))
}

func directiveArg(line, directive string) string {
	return strings.TrimSpace(line[len(directive):])
}
