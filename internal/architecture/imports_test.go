package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Layers may only import downwards:
// platform, domain < data < services < http < app < commands.
func TestImportBoundaries(t *testing.T) {
	root := moduleRoot(t)
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}

	var violations []string
	forEachImport(t, root, func(rel, imp string) {
		for _, bad := range disallowedImports(modulePath, layerFor(rel)) {
			if strings.HasPrefix(imp, bad) {
				violations = append(violations, fmt.Sprintf("- %s imports %q (disallowed: %q)", rel, imp, bad))
				return
			}
		}
	})
	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n%s", strings.Join(violations, "\n"))
	}
}

func TestDatabaseDriversStayInDataLayer(t *testing.T) {
	root := moduleRoot(t)
	var offenders []string
	forEachImport(t, root, func(rel, imp string) {
		if strings.HasPrefix(rel, "internal/data/db/") || strings.HasPrefix(rel, "internal/data/repos/testutil/") {
			return
		}
		if strings.HasPrefix(imp, "gorm.io/driver/") {
			offenders = append(offenders, fmt.Sprintf("- %s imports %q", rel, imp))
		}
	})
	if len(offenders) > 0 {
		t.Fatalf("database drivers imported outside internal/data/db (open the store through db.Open):\n%s",
			strings.Join(offenders, "\n"))
	}
}

// forEachImport calls fn for every import of every .go file under internal/.
// rel is slash-separated and relative to the module root.
func forEachImport(t *testing.T, root string, fn func(rel, imp string)) {
	t.Helper()
	fset := token.NewFileSet()
	err := filepath.WalkDir(filepath.Join(root, "internal"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			if imp, err := strconv.Unquote(spec.Path.Value); err == nil {
				fn(filepath.ToSlash(rel), imp)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk internal/: %v", err)
	}
}

func layerFor(rel string) string {
	for _, layer := range []string{"platform", "domain", "data", "observability", "services", "http"} {
		if strings.HasPrefix(rel, "internal/"+layer+"/") {
			return layer
		}
	}
	return ""
}

func disallowedImports(modulePath string, layer string) []string {
	in := func(pkgs ...string) []string {
		out := make([]string, 0, len(pkgs))
		for _, p := range pkgs {
			out = append(out, modulePath+"/internal/"+p+"/")
		}
		return out
	}
	switch layer {
	case "platform":
		return in("domain", "data", "services", "http", "app", "commands")
	case "domain":
		return in("platform", "data", "services", "http", "app", "commands")
	case "data":
		return in("services", "http", "app", "commands")
	case "observability":
		return in("data", "services", "http", "app", "commands")
	case "services":
		return in("http", "app", "commands", "data/db")
	case "http":
		return in("app", "commands", "data/db")
	default:
		return nil
	}
}

func moduleRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("go.mod not found above working directory")
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if mp, ok := strings.CutPrefix(line, "module "); ok {
			return strings.TrimSpace(mp), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
