//go:build mage

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mesh-intelligence/storeadmin/internal/catalog"
)

// packageStats is the line count of one Go package directory.
type packageStats struct {
	Package string `json:"package"`
	Prod    int    `json:"prod"`
	Test    int    `json:"test"`
}

// catalogStats summarises the managed tables.
type catalogStats struct {
	Tables     int            `json:"tables"`
	Columns    int            `json:"columns"`
	Searchable int            `json:"searchable_tables"`
	Composite  int            `json:"composite_keys"`
	Kinds      map[string]int `json:"kinds"`
}

// Stats prints Go lines per package, golden fixtures and a summary of the
// table catalog as one JSON object.
func Stats() error {
	pkgs, err := countPackages()
	if err != nil {
		return err
	}
	golden, err := filepath.Glob("internal/*/testdata/*.golden")
	if err != nil {
		return err
	}

	var prod, test int
	for _, p := range pkgs {
		prod += p.Prod
		test += p.Test
	}
	record := struct {
		Prod     int            `json:"go_loc_prod"`
		Test     int            `json:"go_loc_test"`
		Packages []packageStats `json:"packages"`
		Golden   int            `json:"golden_fixtures"`
		Catalog  catalogStats   `json:"catalog"`
	}{prod, test, pkgs, len(golden), summariseCatalog()}

	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

// countPackages walks the module and counts lines per directory. Build
// tooling and the reference material under _examples are skipped.
func countPackages() ([]packageStats, error) {
	byDir := map[string]*packageStats{}
	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			switch path {
			case "vendor", ".git", "magefiles", "_examples", binaryDir:
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		n, err := countLines(path)
		if err != nil {
			return nil
		}
		dir := filepath.ToSlash(filepath.Dir(path))
		p, ok := byDir[dir]
		if !ok {
			p = &packageStats{Package: dir}
			byDir[dir] = p
		}
		if strings.HasSuffix(path, "_test.go") {
			p.Test += n
		} else {
			p.Prod += n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]packageStats, 0, len(byDir))
	for _, p := range byDir {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Package < out[j].Package })
	return out, nil
}

func summariseCatalog() catalogStats {
	st := catalogStats{Kinds: map[string]int{}}
	for _, s := range catalog.All() {
		st.Tables++
		st.Columns += len(s.Columns)
		if len(s.Searchable) > 0 {
			st.Searchable++
		}
		if len(s.PrimaryKey) > 1 {
			st.Composite++
		}
		for _, c := range s.Columns {
			st.Kinds[c.Kind.String()]++
		}
	}
	return st
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}
