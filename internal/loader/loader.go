// Package loader reads XML model documents and feeds their sections
// through the textual parser. Documents declare a format version
// which is validated against the supported range before any content
// is touched.
package loader

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	semver "github.com/Masterminds/semver/v3"

	"github.com/dannybpoulsen/utap/internal/diagnostic"
	"github.com/dannybpoulsen/utap/internal/parser"
	"github.com/dannybpoulsen/utap/internal/position"
	"github.com/dannybpoulsen/utap/internal/system"
)

// SupportedVersions is the document format range this loader accepts.
const SupportedVersions = ">=1.0, <2.0"

// DefaultVersion is assumed when a document does not declare one.
const DefaultVersion = "1.0"

type xmlLabel struct {
	Kind string `xml:"kind,attr"`
	Text string `xml:",chardata"`
}

type xmlLocation struct {
	ID     string     `xml:"id,attr"`
	Name   string     `xml:"name"`
	Labels []xmlLabel `xml:"label"`
	Urgent *struct{}  `xml:"urgent"`
	Commit *struct{}  `xml:"committed"`
}

type xmlRef struct {
	Ref string `xml:"ref,attr"`
}

type xmlTransition struct {
	Source xmlRef     `xml:"source"`
	Target xmlRef     `xml:"target"`
	Labels []xmlLabel `xml:"label"`
}

type xmlTemplate struct {
	Name        string          `xml:"name"`
	Parameter   string          `xml:"parameter"`
	Declaration string          `xml:"declaration"`
	Locations   []xmlLocation   `xml:"location"`
	Init        xmlRef          `xml:"init"`
	Transitions []xmlTransition `xml:"transition"`
}

type xmlQuery struct {
	Formula string `xml:"formula"`
}

type xmlDocument struct {
	XMLName       xml.Name      `xml:"nta"`
	Version       string        `xml:"version,attr"`
	Declaration   string        `xml:"declaration"`
	Templates     []xmlTemplate `xml:"template"`
	Instantiation string        `xml:"instantiation"`
	System        string        `xml:"system"`
	Queries       []xmlQuery    `xml:"queries>query"`
}

// ParseXMLFile loads a model document from a file.
func ParseXMLFile(path string, handler *diagnostic.Handler) (*system.System, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		handler.Error(position.Position{Filename: path, Line: 1, Column: 1}, "%s", err)
		return system.New(), false
	}
	return ParseXMLBuffer(data, path, handler)
}

// ParseXMLBuffer loads a model document from memory.
func ParseXMLBuffer(data []byte, filename string, handler *diagnostic.Handler) (*system.System, bool) {
	docPos := position.Position{Filename: filename, Line: 1, Column: 1}

	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		handler.Error(docPos, "invalid document: %s", err)
		return system.New(), false
	}
	if err := checkVersion(doc.Version); err != nil {
		handler.Error(docPos, "%s", err)
		return system.New(), false
	}

	// The document sections are rendered back into the textual
	// syntax and parsed as one source.
	src := renderDocument(&doc)
	sys, ok := parser.ParseXTA(src, filename, handler)
	for _, q := range doc.Queries {
		if formula := strings.TrimSpace(q.Formula); formula != "" {
			parser.ParseQueries(formula, filename, sys, handler)
		}
	}
	return sys, ok && !handler.HasErrors()
}

// checkVersion validates the declared document version against the
// supported range.
func checkVersion(version string) error {
	if version == "" {
		version = DefaultVersion
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid document version %q: %w", version, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("unsupported document version %s (supported: %s)", version, SupportedVersions)
	}
	return nil
}

func labelText(labels []xmlLabel, kind string) string {
	for _, l := range labels {
		if l.Kind == kind {
			return strings.TrimSpace(l.Text)
		}
	}
	return ""
}

// renderDocument flattens an XML document into the textual syntax.
func renderDocument(doc *xmlDocument) string {
	var sb strings.Builder
	sb.WriteString(doc.Declaration)
	sb.WriteString("\n")

	for i := range doc.Templates {
		renderTemplate(&sb, &doc.Templates[i])
	}

	sb.WriteString(doc.Instantiation)
	sb.WriteString("\n")
	sb.WriteString(doc.System)
	sb.WriteString("\n")
	return sb.String()
}

func renderTemplate(sb *strings.Builder, tmpl *xmlTemplate) {
	names := make(map[string]string, len(tmpl.Locations))
	for _, loc := range tmpl.Locations {
		name := loc.Name
		if name == "" {
			name = loc.ID
		}
		names[loc.ID] = name
	}

	fmt.Fprintf(sb, "process %s(%s) {\n", tmpl.Name, tmpl.Parameter)
	sb.WriteString(tmpl.Declaration)
	sb.WriteString("\n")

	var urgent, committed []string
	sb.WriteString("state ")
	for i, loc := range tmpl.Locations {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(names[loc.ID])
		if inv := labelText(loc.Labels, "invariant"); inv != "" {
			fmt.Fprintf(sb, " { %s }", inv)
		}
		if loc.Urgent != nil {
			urgent = append(urgent, names[loc.ID])
		}
		if loc.Commit != nil {
			committed = append(committed, names[loc.ID])
		}
	}
	sb.WriteString(";\n")
	if len(urgent) > 0 {
		fmt.Fprintf(sb, "urgent %s;\n", strings.Join(urgent, ", "))
	}
	if len(committed) > 0 {
		fmt.Fprintf(sb, "commit %s;\n", strings.Join(committed, ", "))
	}
	if tmpl.Init.Ref != "" {
		fmt.Fprintf(sb, "init %s;\n", names[tmpl.Init.Ref])
	}

	for i, trans := range tmpl.Transitions {
		if i == 0 {
			sb.WriteString("trans ")
		} else {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%s -> %s {", names[trans.Source.Ref], names[trans.Target.Ref])
		if sel := labelText(trans.Labels, "select"); sel != "" {
			fmt.Fprintf(sb, " select %s;", sel)
		}
		if guard := labelText(trans.Labels, "guard"); guard != "" {
			fmt.Fprintf(sb, " guard %s;", guard)
		}
		if sync := labelText(trans.Labels, "synchronisation"); sync != "" {
			fmt.Fprintf(sb, " sync %s;", sync)
		}
		if assign := labelText(trans.Labels, "assignment"); assign != "" {
			fmt.Fprintf(sb, " assign %s;", assign)
		}
		sb.WriteString(" }")
	}
	if len(tmpl.Transitions) > 0 {
		sb.WriteString(";\n")
	}
	sb.WriteString("}\n")
}
