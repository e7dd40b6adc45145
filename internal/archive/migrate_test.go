package archive

import (
	"io/fs"
	"sort"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"0001_days.sql", 1, false},
		{"0042_add_column.sql", 42, false},
		{"days.sql", 0, true},
		{"_days.sql", 0, true},
		{"abc_days.sql", 0, true},
	}
	for _, tt := range tests {
		got, err := parseVersion(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseVersion(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseVersion(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "sql/*.sql")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no embedded migrations")
	}
	sort.Strings(files)
	prev := 0
	for _, f := range files {
		v, err := parseVersion(f[len("sql/"):])
		if err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		if v <= prev {
			t.Errorf("%s: version %d not increasing", f, v)
		}
		prev = v
	}
}
