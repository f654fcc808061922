package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "nftmarket"

// layerRule lists what a layer of a bounded-context service may import besides
// the standard library. Prefixes starting with "./" are relative to the
// service root.
type layerRule struct {
	allowed []string
}

var layerRules = map[string]layerRule{
	"domain": {allowed: []string{"./domain"}},
	"ports":  {allowed: []string{"./domain", modulePath + "/contracts"}},
	"application": {allowed: []string{
		"./application",
		"./domain",
		"./ports",
		modulePath + "/contracts",
		"golang.org/x/crypto",
	}},
}

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

func main() {
	violations, err := collectViolations("contexts")
	if err != nil {
		fmt.Fprintf(os.Stderr, "walk contexts: %v\n", err)
		os.Exit(2)
	}
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Import < b.Import
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) ([]violation, error) {
	var violations []violation
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		// contexts/<context>/<service>/<layer>/...
		parts := strings.Split(filepath.ToSlash(path), "/")
		if len(parts) < 4 {
			return nil
		}
		serviceRoot := strings.Join([]string{modulePath, parts[0], parts[1], parts[2]}, "/")
		found, err := checkFile(path, serviceRoot, parts[3])
		if err != nil {
			return err
		}
		violations = append(violations, found...)
		return nil
	})
	return violations, err
}

func checkFile(path string, serviceRoot string, layer string) ([]violation, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	rule, layered := layerRules[layer]
	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)
		report := func(reason string) {
			violations = append(violations, violation{
				File:   filepath.ToSlash(path),
				Line:   fset.Position(imp.Pos()).Line,
				Import: importPath,
				Rule:   reason,
			})
		}

		if hasPrefix(importPath, modulePath+"/contexts") && !hasPrefix(importPath, serviceRoot) {
			report("cross-service imports are forbidden")
		}
		if !layered || isStdlib(importPath) {
			continue
		}
		if hasPrefix(importPath, modulePath+"/internal") || hasPrefix(importPath, modulePath+"/cmd") {
			report(layer + " must not import runtime infrastructure")
			continue
		}
		if !rule.permits(importPath, serviceRoot) {
			report(layer + " import is outside the allowlist")
		}
	}
	return violations, nil
}

func (r layerRule) permits(importPath string, serviceRoot string) bool {
	for _, prefix := range r.allowed {
		if rest, ok := strings.CutPrefix(prefix, "./"); ok {
			prefix = serviceRoot + "/" + rest
		}
		if hasPrefix(importPath, prefix) {
			return true
		}
	}
	return false
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// isStdlib treats any import whose first element has no dot as standard library.
func isStdlib(importPath string) bool {
	if hasPrefix(importPath, modulePath) {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
