package database

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"sync"
)

// Migration is one versioned SQL change with its reverse script.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
}

func (m Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

//go:embed migrations/*.sql
var migrationFiles embed.FS

var upFileName = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.up\.sql$`)

// embeddedMigrations parses the compiled-in scripts once per process.
var embeddedMigrations = sync.OnceValues(func() ([]Migration, error) {
	return loadMigrations(migrationFiles, "migrations")
})

// loadMigrations reads every NNNNNN_name.up.sql in dir together with its
// .down.sql partner. A malformed name, a missing down script or a repeated
// version fails the whole set rather than silently dropping a file.
func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	ups, err := fs.Glob(fsys, path.Join(dir, "*.up.sql"))
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	set := make([]Migration, 0, len(ups))
	seen := make(map[int]string, len(ups))
	for _, file := range ups {
		match := upFileName.FindStringSubmatch(path.Base(file))
		if match == nil {
			return nil, fmt.Errorf("migration %s: expected NNNNNN_name.up.sql", path.Base(file))
		}
		version, _ := strconv.Atoi(match[1])
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration version %d used by both %s and %s", version, prev, path.Base(file))
		}
		seen[version] = path.Base(file)

		up, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		down, err := fs.ReadFile(fsys, path.Join(dir, fmt.Sprintf("%s_%s.down.sql", match[1], match[2])))
		if err != nil {
			return nil, fmt.Errorf("migration %d has no down script: %w", version, err)
		}

		set = append(set, Migration{Version: version, Name: match[2], UpScript: string(up), DownScript: string(down)})
	}

	sort.Slice(set, func(i, j int) bool { return set[i].Version < set[j].Version })
	return set, nil
}

func findMigration(set []Migration, version int) (Migration, bool) {
	i := sort.Search(len(set), func(i int) bool { return set[i].Version >= version })
	if i < len(set) && set[i].Version == version {
		return set[i], true
	}
	return Migration{}, false
}
