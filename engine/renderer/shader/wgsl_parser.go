package shader

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
)

// wgslVertexFormatMap maps WGSL type names to the vertex formats the renderer
// supports.
var wgslVertexFormatMap = map[string]metadata.Format{
	"f32":       metadata.FormatR32Float,
	"vec2f":     metadata.FormatR32G32Float,
	"vec2<f32>": metadata.FormatR32G32Float,
	"vec3f":     metadata.FormatR32G32B32Float,
	"vec3<f32>": metadata.FormatR32G32B32Float,
	"vec4f":     metadata.FormatR32G32B32A32Float,
	"vec4<f32>": metadata.FormatR32G32B32A32Float,
	"u32":       metadata.FormatR32Uint,
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a field or parameter: optional attributes, name, colon, type
	fieldRegex = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*(.+)$`)

	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\s+fn\s+(\w+)\s*\(`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\s+fn\s+(\w+)\s*\(`)

	lineCommentRegex = regexp.MustCompile(`//[^\n]*`)
)

// EntryPoint returns the name of the entry point for stage.
func EntryPoint(source string, stage metadata.Stage) (string, error) {
	re := vertexEntryRegex
	if stage == metadata.StagePixel {
		re = fragmentEntryRegex
	}
	m := re.FindStringSubmatch(lineCommentRegex.ReplaceAllString(source, ""))
	if m == nil {
		return "", fmt.Errorf("no %s entry point", stage)
	}
	return m[1], nil
}

// ReflectVertexInputs returns the @location inputs of the @vertex entry
// point, sorted by location. Struct parameters are expanded.
func ReflectVertexInputs(source string) ([]Input, error) {
	src := lineCommentRegex.ReplaceAllString(source, "")

	loc := vertexEntryRegex.FindStringSubmatchIndex(src)
	if loc == nil {
		return nil, fmt.Errorf("no vertex entry point")
	}
	params, err := parameterList(src, loc[1]-1)
	if err != nil {
		return nil, err
	}

	structs := parseStructs(src)

	var inputs []Input
	for _, param := range splitTopLevel(params) {
		if builtinRegex.MatchString(param) {
			continue
		}
		if locationRegex.MatchString(param) {
			in, err := parseInput(param)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, in)
			continue
		}
		m := fieldRegex.FindStringSubmatch(param)
		if m == nil {
			return nil, fmt.Errorf("malformed vertex parameter %q", param)
		}
		fields, ok := structs[strings.TrimSpace(m[2])]
		if !ok {
			return nil, fmt.Errorf("vertex parameter %q has neither a location nor a struct type", m[1])
		}
		for _, f := range fields {
			if builtinRegex.MatchString(f) || !locationRegex.MatchString(f) {
				continue
			}
			in, err := parseInput(f)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, in)
		}
	}

	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Location < inputs[j].Location })
	for i := 1; i < len(inputs); i++ {
		if inputs[i].Location == inputs[i-1].Location {
			return nil, fmt.Errorf("duplicate vertex input location %d", inputs[i].Location)
		}
	}
	return inputs, nil
}

func parseInput(decl string) (Input, error) {
	lm := locationRegex.FindStringSubmatch(decl)
	location, err := strconv.ParseUint(lm[1], 10, 32)
	if err != nil {
		return Input{}, fmt.Errorf("bad location in %q: %w", decl, err)
	}
	m := fieldRegex.FindStringSubmatch(decl)
	if m == nil {
		return Input{}, fmt.Errorf("malformed vertex input %q", decl)
	}
	typ := strings.Join(strings.Fields(m[2]), "")
	format, ok := wgslVertexFormatMap[typ]
	if !ok {
		return Input{}, fmt.Errorf("unsupported vertex input type %q for %s", typ, m[1])
	}
	return Input{
		Location: uint32(location),
		Name:     m[1],
		Type:     typ,
		Format:   format,
	}, nil
}

// parameterList returns the text between the parenthesis at open and its
// matching closing parenthesis.
func parameterList(src string, open int) (string, error) {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return src[open+1 : i], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated parameter list")
}

// splitTopLevel splits on commas that are not nested in (), <> or [].
func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '<', '[':
			depth++
		case ')', '>', ']':
			depth--
		case ',':
			if depth == 0 {
				out = appendTrimmed(out, s[start:i])
				start = i + 1
			}
		}
	}
	return appendTrimmed(out, s[start:])
}

func appendTrimmed(out []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return out
	}
	return append(out, s)
}

func parseStructs(src string) map[string][]string {
	structs := make(map[string][]string)
	for _, m := range structBlockRegex.FindAllStringSubmatch(src, -1) {
		structs[m[1]] = splitTopLevel(m[2])
	}
	return structs
}
