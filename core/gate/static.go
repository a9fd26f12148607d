package gate

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pulselab/portpulse/schema"
)

// modulePath prefixes in-module imports in the layer scan.
const modulePath = "github.com/pulselab/portpulse"

// rankingPackage is the one package allowed to sort actions or compute
// rank scores.
const rankingPackage = "core/algo"

// checkLayerImports parses every layered package and confirms imports
// only point at the same or a lower layer. Packages absent from the
// layer table are outside the layered core and are not scanned.
func checkLayerImports(in *Input) schema.GateCheckResult {
	if in.SourceRoot == "" {
		return skipped("no source root supplied")
	}

	pkgs := make([]string, 0, len(schema.PackageLayers))
	for pkg := range schema.PackageLayers {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	var violations []string
	for _, pkg := range pkgs {
		layer := schema.PackageLayers[pkg]
		files, err := sourceFiles(filepath.Join(in.SourceRoot, filepath.FromSlash(pkg)))
		if err != nil {
			violations = append(violations, fmt.Sprintf("%s: %v", pkg, err))
			continue
		}
		for _, file := range files {
			imports, err := parseImports(file)
			if err != nil {
				violations = append(violations, fmt.Sprintf("%s: %v", file, err))
				continue
			}
			for _, imp := range imports {
				target, ok := strings.CutPrefix(imp, modulePath+"/")
				if !ok {
					continue // outside the module
				}
				targetLayer, layered := schema.PackageLayers[target]
				if !layered {
					continue
				}
				if schema.LayerRank[targetLayer] > schema.LayerRank[layer] {
					violations = append(violations, fmt.Sprintf(
						"%s (layer %s) imports %s (layer %s)", pkg, layer, target, targetLayer))
				}
			}
		}
	}
	if len(violations) > 0 {
		return failed("", violations...)
	}
	return passed("")
}

// checkSingleRankingSurface scans every package outside the designated
// ranking package for code that sorts actions, sorts by the score
// field, or defines ranking functions. Any match is a violation: the
// ranked order must have exactly one author.
func checkSingleRankingSurface(in *Input) schema.GateCheckResult {
	if in.SourceRoot == "" {
		return skipped("no source root supplied")
	}
	var violations []string
	err := filepath.WalkDir(in.SourceRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata" {
				return filepath.SkipDir
			}
			rel, relErr := filepath.Rel(in.SourceRoot, path)
			if relErr == nil && filepath.ToSlash(rel) == rankingPackage {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		found, scanErr := scanFileForRanking(path)
		if scanErr != nil {
			violations = append(violations, fmt.Sprintf("%s: %v", path, scanErr))
			return nil
		}
		for _, v := range found {
			rel, relErr := filepath.Rel(in.SourceRoot, path)
			if relErr != nil {
				rel = path
			}
			violations = append(violations, fmt.Sprintf("%s: %s", filepath.ToSlash(rel), v))
		}
		return nil
	})
	if err != nil {
		return failed("", fmt.Sprintf("scan aborted: %v", err))
	}
	if len(violations) > 0 {
		return failed("", violations...)
	}
	return passed("")
}

// sortFuncs are the sorting entry points the surface scan watches.
var sortFuncs = map[string]map[string]bool{
	"sort":   {"Slice": true, "SliceStable": true, "Sort": true, "Stable": true},
	"slices": {"Sort": true, "SortFunc": true, "SortStableFunc": true},
}

// scanFileForRanking reports ranking-shaped code in one file: sort
// calls whose arguments touch actions or rank scores, and function
// declarations named like a ranker.
func scanFileForRanking(path string) ([]string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}
	var found []string
	ast.Inspect(file, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.FuncDecl:
			name := strings.ToLower(node.Name.Name)
			if strings.Contains(name, "rank") && (strings.Contains(name, "action") || strings.Contains(name, "score")) {
				found = append(found, fmt.Sprintf("defines ranking function %s", node.Name.Name))
			}
		case *ast.CallExpr:
			sel, ok := node.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			pkg, ok := sel.X.(*ast.Ident)
			if !ok || !sortFuncs[pkg.Name][sel.Sel.Name] {
				return true
			}
			if callTouchesActions(node) {
				found = append(found, fmt.Sprintf("sorts actions via %s.%s", pkg.Name, sel.Sel.Name))
			}
		}
		return true
	})
	return found, nil
}

// callTouchesActions reports whether any identifier in the call's
// arguments names actions or the rank score field.
func callTouchesActions(call *ast.CallExpr) bool {
	touches := false
	for _, arg := range call.Args {
		ast.Inspect(arg, func(n ast.Node) bool {
			switch node := n.(type) {
			case *ast.Ident:
				lower := strings.ToLower(node.Name)
				if strings.Contains(lower, "action") || node.Name == "RankScore" {
					touches = true
				}
			case *ast.SelectorExpr:
				if node.Sel.Name == "RankScore" {
					touches = true
				}
			}
			return !touches
		})
		if touches {
			return true
		}
	}
	return false
}

// sourceFiles lists the non-test Go files directly in dir.
func sourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

// parseImports returns the import paths of one Go file.
func parseImports(path string) ([]string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return nil, err
	}
	imports := make([]string, 0, len(file.Imports))
	for _, imp := range file.Imports {
		imports = append(imports, strings.Trim(imp.Path.Value, `"`))
	}
	return imports, nil
}
