package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bianoble/confpatch/internal/cfgerr"
	"github.com/bianoble/confpatch/internal/codec"
)

func patchJSON(t *testing.T, current string, mode Mode, pairs ...string) string {
	t.Helper()
	out, err := JSONPatcher{}.Patch(Request{
		Subject:   "appsettings.json",
		Current:   []byte(current),
		Overrides: codec.FlatMapOf(pairs...),
		Mode:      mode,
	})
	require.NoError(t, err)
	return string(out)
}

func TestJSONPatchIsolation(t *testing.T) {
	got := patchJSON(t, `{"A":1,"B":{"C":2}}`, Patch, "B.C", "9")
	assert.Equal(t, "{\n  \"A\": 1,\n  \"B\": {\n    \"C\": 9\n  }\n}\n", got)
}

func TestJSONPatchKeepsUntouchedNumberLiterals(t *testing.T) {
	got := patchJSON(t, `{"Id":18446744073709551615,"Precise":0.10000000000000000555,"Ratio":1.50,"B":1}`, Patch, "B", "2")
	want := "{\n  \"Id\": 18446744073709551615,\n  \"Precise\": 0.10000000000000000555,\n  \"Ratio\": 1.50,\n  \"B\": 2\n}\n"
	assert.Equal(t, want, got)
}

func TestJSONOverwriteIsolation(t *testing.T) {
	got := patchJSON(t, `{"A":1,"B":{"C":2}}`, Overwrite, "B.C", "9")
	assert.Equal(t, "{\n  \"B\": {\n    \"C\": 9\n  }\n}\n", got)
}

func TestJSONOverwriteIgnoresCorruptContent(t *testing.T) {
	got := patchJSON(t, `not json at all`, Overwrite, "A", "x", "B", " ")
	assert.Equal(t, "{\n  \"A\": \"x\"\n}\n", got)
}

func TestJSONOverwriteAllBlankYieldsEmptyObject(t *testing.T) {
	got := patchJSON(t, `{"A":1}`, Overwrite, "A", "")
	assert.Equal(t, "{}\n", got)
}

func TestJSONBlankOverridesAreNoOps(t *testing.T) {
	current := "{\n  \"A\": 1,\n  \"B\": \"x\"\n}\n"
	got := patchJSON(t, current, Patch, "A", "", "B", "   ", "C", "\t")
	assert.Equal(t, current, got)
}

func TestJSONPatchKeepsOrderAndAppendsNewKeys(t *testing.T) {
	got := patchJSON(t, `{"Z":1,"M":{"Y":1,"X":2},"A":3}`, Patch,
		"M.New", "n",
		"M.Y", "5",
		"Added", "true",
	)
	want := `{
  "Z": 1,
  "M": {
    "Y": 5,
    "X": 2,
    "New": "n"
  },
  "A": 3,
  "Added": true
}
`
	assert.Equal(t, want, got)
}

func TestJSONPatchArrayAutoExtension(t *testing.T) {
	got := patchJSON(t, `{"AppSettings":{"Triggers":[{"Type":"A"}]}}`, Patch,
		"AppSettings.Triggers[2].Type", "C")
	want := `{
  "AppSettings": {
    "Triggers": [
      {
        "Type": "A"
      },
      {},
      {
        "Type": "C"
      }
    ]
  }
}
`
	assert.Equal(t, want, got)
}

func TestJSONPatchIdempotent(t *testing.T) {
	pairs := []string{"B.C", "9", "List[3]", "x", "New.Deep[1].K", "[1,2]"}
	once := patchJSON(t, `{"A":1,"B":{"C":2}}`, Patch, pairs...)
	twice := patchJSON(t, once, Patch, pairs...)
	assert.Equal(t, once, twice)
}

func TestJSONPatchCorruptFile(t *testing.T) {
	_, err := JSONPatcher{}.Patch(Request{
		Subject:   "bad.json",
		Current:   []byte(`{"A":`),
		Overrides: codec.FlatMapOf("A", "1"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, cfgerr.CorruptConfigFile)
	assert.Contains(t, err.Error(), "bad.json")
}

func TestJSONPatchRejectsCommentsUnlessAllowed(t *testing.T) {
	current := "{\n  // port\n  \"Port\": 80, /* old */\n  \"Host\": \"h\",\n}\n"

	_, err := JSONPatcher{}.Patch(Request{Current: []byte(current), Overrides: codec.FlatMapOf("Port", "81")})
	assert.ErrorIs(t, err, cfgerr.CorruptConfigFile)

	out, err := JSONPatcher{}.Patch(Request{
		Current:       []byte(current),
		Overrides:     codec.FlatMapOf("Port", "81"),
		AllowComments: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"Port\": 81,\n  \"Host\": \"h\"\n}\n", string(out))
}

func TestJSONPatchMalformedPath(t *testing.T) {
	_, err := JSONPatcher{}.Patch(Request{
		Current:   []byte(`{}`),
		Overrides: codec.FlatMapOf("Triggers[abc]", "1"),
	})
	assert.ErrorIs(t, err, cfgerr.MalformedKeyPath)
}

func TestJSONPatchPathConflict(t *testing.T) {
	_, err := JSONPatcher{}.Patch(Request{
		Current:   []byte(`{"A":5}`),
		Overrides: codec.FlatMapOf("A.B", "1"),
	})
	assert.ErrorIs(t, err, cfgerr.PathConflict)
}

func patchINI(t *testing.T, current string, pairs ...string) string {
	t.Helper()
	out, err := INIPatcher{}.Patch(Request{
		Subject:   "app.ini",
		Current:   []byte(current),
		Overrides: codec.FlatMapOf(pairs...),
	})
	require.NoError(t, err)
	return string(out)
}

func TestINIUpsert(t *testing.T) {
	assert.Equal(t, "Timeout=10\nPort=9090\n", patchINI(t, "Timeout=10\nPort=8080\n", "Port", "9090"))
	assert.Equal(t, "Timeout=10\nPort=8080\nRetries=3\n", patchINI(t, "Timeout=10\nPort=8080", "Retries", "3"))
}

func TestINIMatchesSpacedAssignmentAndSkipsComments(t *testing.T) {
	current := "; Port=1\n# Port=2\n\n  Port = 8080\nPortal=x\n"
	got := patchINI(t, current, "Port", "9090")
	assert.Equal(t, "; Port=1\n# Port=2\n\nPort=9090\nPortal=x\n", got)
}

// Section headers do not scope keys; the first assignment in the file wins.
func TestINIKeyMatchingIsGlobalAcrossSections(t *testing.T) {
	current := "[server]\nPort=80\n[admin]\nPort=81\n"
	got := patchINI(t, current, "Port", "9090")
	assert.Equal(t, "[server]\nPort=9090\n[admin]\nPort=81\n", got)

	got = patchINI(t, "[server]\nHost=a\n", "Port", "1")
	assert.Equal(t, "[server]\nHost=a\nPort=1\n", got)
}

func TestINIBlankOverridesAreNoOps(t *testing.T) {
	current := "A=1\nB=2\n"
	assert.Equal(t, current, patchINI(t, current, "A", "", "B", "  "))
}

func TestINIPreservesCRLFAndBOM(t *testing.T) {
	got := patchINI(t, "\ufeffA=1\r\nB=2\r\n", "B", "3", "C", "4")
	assert.Equal(t, "\ufeffA=1\r\nB=3\r\nC=4\r\n", got)
}

func TestINIEmptyFile(t *testing.T) {
	assert.Equal(t, "A=1\n", patchINI(t, "", "A", "1"))
	assert.Equal(t, "", patchINI(t, ""))
}

func TestINIIdempotent(t *testing.T) {
	once := patchINI(t, "A=1\n[s]\nB=2\n", "A", "5", "C", "6")
	assert.Equal(t, once, patchINI(t, once, "A", "5", "C", "6"))
}

func TestINIRejectsBinaryContent(t *testing.T) {
	for _, data := range [][]byte{{'A', '=', 0, '\n'}, {0xff, 0xfe, 'A'}} {
		_, err := INIPatcher{}.Patch(Request{Current: data, Overrides: codec.FlatMapOf("A", "1")})
		assert.ErrorIs(t, err, cfgerr.CorruptConfigFile)
	}
}

func TestINIRejectsInvalidKeys(t *testing.T) {
	for _, key := range []string{"A=B", " Port", "Port ", "; Port", "#Port", "A\nB"} {
		_, err := INIPatcher{}.Patch(Request{Current: []byte("Port=8080\n"), Overrides: codec.FlatMapOf(key, "9")})
		assert.ErrorIs(t, err, cfgerr.MalformedKeyPath, "key %q", key)
	}
}

func TestINIRejectsMultiLineValues(t *testing.T) {
	for _, text := range []string{"1\nEvil=1", "1\r\nEvil=1", "1\r"} {
		out, err := INIPatcher{}.Patch(Request{
			Current:   []byte("Port=8080\n"),
			Overrides: codec.FlatMapOf("Host", "a", "Port", text),
		})
		assert.ErrorIs(t, err, cfgerr.InvalidValue, "value %q", text)
		assert.Nil(t, out)
	}
}

func TestINIOverwriteBehavesLikePatch(t *testing.T) {
	out, err := INIPatcher{}.Patch(Request{
		Current:   []byte("A=1\nB=2\n"),
		Overrides: codec.FlatMapOf("B", "3"),
		Mode:      Overwrite,
	})
	require.NoError(t, err)
	assert.Equal(t, "A=1\nB=3\n", string(out))
}

func TestSplitLinesKeepsTrailingBlankLine(t *testing.T) {
	l := SplitLines([]byte("A=1\n\n"))
	assert.Equal(t, []string{"A=1", ""}, l.Lines())
	assert.Equal(t, "A=1\n\n", string(l.Bytes()))
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	p, err := r.Get(JSON)
	require.NoError(t, err)
	assert.IsType(t, JSONPatcher{}, p)

	_, err = r.Get(ParseFormat("XML"))
	require.Error(t, err)
	assert.ErrorIs(t, err, cfgerr.UnsupportedFormat)
	assert.Contains(t, err.Error(), "ini, json")

	_, err = NewRegistry().Get(JSON)
	assert.Contains(t, err.Error(), "(none registered)")
}

func TestParseModeAndFormat(t *testing.T) {
	for in, want := range map[string]Mode{"": Patch, "Patch": Patch, "OVERWRITE": Overwrite, " overwrite ": Overwrite} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMode("merge")
	assert.Error(t, err)

	assert.Equal(t, INI, ParseFormat(" INI "))
	assert.Equal(t, Format("xml"), ParseFormat("Xml"))
}
