package overrides

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTable(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overrides.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write overrides file: %v", err)
	}
	return path
}

func TestLoadVariants(t *testing.T) {
	path := writeTable(t, `{
		"Suppressed Null": null,
		"Suppressed String": "ignore",
		"Suppressed Mixed Case": "IGNORE",
		"Pinned": 12345
	}`)

	table, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if table.Len() != 4 {
		t.Fatalf("Len = %d, want 4", table.Len())
	}

	for _, title := range []string{"Suppressed Null", "Suppressed String", "Suppressed Mixed Case"} {
		if rule := table.Lookup(title); rule.Kind != Ignore {
			t.Errorf("Lookup(%q).Kind = %v, want Ignore", title, rule.Kind)
		}
	}
	rule := table.Lookup("Pinned")
	if rule.Kind != ForceID || rule.ID != 12345 {
		t.Errorf("Lookup(Pinned) = %+v, want ForceID 12345", rule)
	}
}

func TestLookupAbsentTitle(t *testing.T) {
	table, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rule := table.Lookup("Unknown"); rule.Kind != NoRule {
		t.Errorf("Kind = %v, want NoRule", rule.Kind)
	}
}

func TestLoadMissingFile(t *testing.T) {
	table, err := Load(filepath.Join(t.TempDir(), "absent.json"), nil)
	if err != nil {
		t.Fatalf("Load of missing file should not error: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("Len = %d, want 0", table.Len())
	}
}

func TestLoadRejectsUnsupportedValues(t *testing.T) {
	cases := map[string]string{
		"float":  `{"Bad": 1.5}`,
		"object": `{"Bad": {"id": 3}}`,
		"string": `{"Bad": "skip"}`,
		"zero":   `{"Bad": 0}`,
	}
	for name, contents := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeTable(t, contents), nil); err == nil {
				t.Error("unsupported override values must be a configuration error")
			}
		})
	}
}
