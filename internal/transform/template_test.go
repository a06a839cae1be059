package transform

import (
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/bianoble/confpatch/internal/codec"
	"github.com/bianoble/confpatch/internal/value"
)

func TestTemplateSimpleSubstitution(t *testing.T) {
	tx := &TemplateTransform{}
	result, err := tx.Expand("http://{{ .host }}:8080", map[string]string{"host": "db01"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if result != "http://db01:8080" {
		t.Errorf("got %q", result)
	}
}

func TestTemplateMultipleVars(t *testing.T) {
	tx := &TemplateTransform{}
	result, err := tx.Expand("{{ .env }}/{{ .region }}", map[string]string{"env": "prod", "region": "eu"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if result != "prod/eu" {
		t.Errorf("got %q", result)
	}
}

func TestTemplateMissingVarError(t *testing.T) {
	tx := &TemplateTransform{}
	_, err := tx.Expand("{{ .missing }}", map[string]string{"project": "test"})
	if err == nil {
		t.Fatal("expected error for missing variable")
	}
}

func TestTemplateNoVarsPassthrough(t *testing.T) {
	tx := &TemplateTransform{}
	result, err := tx.Expand("No template syntax here. {not a template}", nil)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if result != "No template syntax here. {not a template}" {
		t.Errorf("got %q", result)
	}
}

func TestTemplateInvalidSyntaxError(t *testing.T) {
	tx := &TemplateTransform{}
	_, err := tx.Expand("{{ .unclosed", map[string]string{})
	if err == nil {
		t.Fatal("expected error for invalid template syntax")
	}
	if !strings.Contains(err.Error(), "parsing template") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExpandValues(t *testing.T) {
	tx := &TemplateTransform{}
	flat := codec.FlatMapOf(
		"ConnectionStrings.Main", "Server={{ .db }};",
		"Logging.Level", "Info",
		"{{ .notExpanded }}", "",
	)

	out, err := tx.ExpandValues(flat, map[string]string{"db": "db01"})
	if err != nil {
		t.Fatalf("ExpandValues: %v", err)
	}
	if got := strings.Join(out.Keys(), ","); got != "ConnectionStrings.Main,Logging.Level,{{ .notExpanded }}" {
		t.Errorf("keys = %s", got)
	}
	if v, _ := out.Get("ConnectionStrings.Main"); v != "Server=db01;" {
		t.Errorf("got %q", v)
	}
	if v, _ := flat.Get("ConnectionStrings.Main"); v != "Server={{ .db }};" {
		t.Errorf("input mutated: %q", v)
	}
}

func TestExpandValuesNamesFailingKey(t *testing.T) {
	tx := &TemplateTransform{}
	_, err := tx.ExpandValues(codec.FlatMapOf("A", "ok", "B", "{{ .nope }}"), nil)
	if err == nil || !strings.Contains(err.Error(), "value 'B'") {
		t.Fatalf("expected error naming key B, got %v", err)
	}
}

func TestExpandTree(t *testing.T) {
	tx := &TemplateTransform{}
	tree := value.NewObject(
		value.Member{Key: "{{ .key }}", Value: value.String("{{ .env }}")},
		value.Member{Key: "Port", Value: value.Int(80)},
		value.Member{Key: "Triggers", Value: value.NewArray(
			value.NewObject(value.Member{Key: "Path", Value: value.String("/srv/{{ .env }}")}),
		)},
	)

	out, err := tx.ExpandTree(tree, map[string]string{"env": "prod"})
	if err != nil {
		t.Fatalf("ExpandTree: %v", err)
	}
	want := `{"{{ .key }}":"prod","Port":80,"Triggers":[{"Path":"/srv/prod"}]}`
	if got, _ := out.MarshalJSON(); string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if v, _ := tree.Get("{{ .key }}"); v.AsString() != "{{ .env }}" {
		t.Errorf("input mutated: %q", v.AsString())
	}

	_, err = tx.ExpandTree(tree, nil)
	if err == nil || !strings.Contains(err.Error(), "default '{{ .key }}'") {
		t.Fatalf("expected error naming the default, got %v", err)
	}
}

func TestMergeVars(t *testing.T) {
	manifest := map[string]string{"a": "1", "b": "2"}
	env := map[string]string{"b": "env", "c": "3"}
	flags := map[string]string{"c": "flag"}

	merged := MergeVars(manifest, env, flags)

	if merged["a"] != "1" {
		t.Errorf("a = %q, want 1", merged["a"])
	}
	if merged["b"] != "env" {
		t.Errorf("b = %q, want env", merged["b"])
	}
	if merged["c"] != "flag" {
		t.Errorf("c = %q, want flag", merged["c"])
	}
	if len(MergeVars()) != 0 {
		t.Error("no layers should merge to an empty map")
	}
}

func TestDeterminism(t *testing.T) {
	tx := &TemplateTransform{}
	vars := map[string]string{"a": "x", "b": "y", "c": "z"}

	first, err := tx.Expand("{{ .a }} {{ .b }} {{ .c }}", vars)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		result, err := tx.Expand("{{ .a }} {{ .b }} {{ .c }}", vars)
		if err != nil {
			t.Fatal(err)
		}
		if result != first {
			t.Fatalf("iteration %d: non-deterministic output %q vs %q", i, result, first)
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "# deployment\nDB_HOST=db01\nexport REGION=eu\nQUOTED=\"a b\"\n"
	if err := afero.WriteFile(fs, "/.env", []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	vars, err := LoadEnvFile(fs, "/.env")
	if err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if vars["DB_HOST"] != "db01" || vars["REGION"] != "eu" || vars["QUOTED"] != "a b" {
		t.Errorf("unexpected vars: %v", vars)
	}

	if _, err := LoadEnvFile(fs, "/missing.env"); err == nil {
		t.Error("expected error for missing env file")
	}
}

func TestParseVarFlags(t *testing.T) {
	vars, err := ParseVarFlags([]string{"env=prod", "conn=a=b", "empty="})
	if err != nil {
		t.Fatalf("ParseVarFlags: %v", err)
	}
	if vars["env"] != "prod" || vars["conn"] != "a=b" || vars["empty"] != "" {
		t.Errorf("unexpected vars: %v", vars)
	}

	for _, bad := range []string{"novalue", "=x"} {
		if _, err := ParseVarFlags([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
