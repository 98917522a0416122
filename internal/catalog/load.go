package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/relq/internal/rel"
)

// Load reads every .cue file under dir, unifies them into one CUE value
// and compiles the `table` struct into a catalog. The first error stops
// the load.
func Load(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("catalog directory not found: %s", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("accessing catalog directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning catalog directory: %w", err)
	}
	if len(cueFiles) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	return Compile(value)
}

// Compile builds a catalog from an already-built CUE value whose root
// holds the `table` struct. Exposed separately so tests can feed CUE
// source directly.
func Compile(value cue.Value) (*Catalog, error) {
	c := &Catalog{tables: map[string]*rel.Table{}}

	tablesVal := value.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return nil, fmt.Errorf("no tables found in catalog")
	}
	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		t, err := CompileTable(iter.Value())
		if err != nil {
			return nil, err
		}
		if _, ok := c.tables[t.Name]; ok {
			return nil, fmt.Errorf("table %q defined twice", t.Name)
		}
		c.tables[t.Name] = t
		c.names = append(c.names, t.Name)
	}
	if len(c.names) == 0 {
		return nil, fmt.Errorf("no tables found in catalog")
	}
	return c, nil
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
