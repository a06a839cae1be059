package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bianoble/confpatch/internal/cfgerr"
	"github.com/bianoble/confpatch/internal/keypath"
	"github.com/bianoble/confpatch/internal/value"
)

func mustDecode(t *testing.T, text string) value.Value {
	t.Helper()
	v, err := value.Decode([]byte(text))
	require.NoError(t, err)
	return v
}

func TestFlattenOrderAndText(t *testing.T) {
	tree := mustDecode(t, `{
		"AppSettings": {
			"Name": "svc",
			"Port": 8080,
			"Ratio": 0.25,
			"Debug": false,
			"Extra": null,
			"Triggers": [
				{"Type": "Cron", "ExePath": "C:\\a.exe"},
				{"Type": "Once"}
			]
		},
		"Empty": {},
		"None": []
	}`)

	flat, err := Flatten(tree)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"AppSettings.Name",
		"AppSettings.Port",
		"AppSettings.Ratio",
		"AppSettings.Debug",
		"AppSettings.Extra",
		"AppSettings.Triggers[0].Type",
		"AppSettings.Triggers[0].ExePath",
		"AppSettings.Triggers[1].Type",
	}, flat.Keys())

	get := func(k string) string {
		v, ok := flat.Get(k)
		require.True(t, ok, k)
		return v
	}
	assert.Equal(t, "8080", get("AppSettings.Port"))
	assert.Equal(t, "0.25", get("AppSettings.Ratio"))
	assert.Equal(t, "false", get("AppSettings.Debug"))
	assert.Equal(t, "", get("AppSettings.Extra"))
	assert.Equal(t, `C:\a.exe`, get("AppSettings.Triggers[0].ExePath"))
}

func TestFlattenNestedArrays(t *testing.T) {
	flat, err := Flatten(mustDecode(t, `{"M":[[1,2],[3]]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"M[0][0]", "M[0][1]", "M[1][0]"}, flat.Keys())
}

func TestFlattenRootArray(t *testing.T) {
	flat, err := Flatten(mustDecode(t, `[{"Name":"a"},{"Name":"b"}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"[0].Name", "[1].Name"}, flat.Keys())

	back, err := Unflatten(flat)
	require.NoError(t, err)
	assert.True(t, back.Equal(mustDecode(t, `[{"Name":"a"},{"Name":"b"}]`)))
}

func TestFlattenRejectsUnrepresentableFieldNames(t *testing.T) {
	for _, doc := range []string{`{"a.b":1}`, `{"a":{"x[0]":1}}`, `{"":1}`} {
		_, err := Flatten(mustDecode(t, doc))
		assert.ErrorIs(t, err, cfgerr.MalformedKeyPath, doc)
	}
}

func TestFlattenScalarRoot(t *testing.T) {
	_, err := Flatten(value.Int(3))
	assert.ErrorIs(t, err, cfgerr.MalformedKeyPath)

	flat, err := Flatten(value.Null())
	require.NoError(t, err)
	assert.Equal(t, 0, flat.Len())
}

func TestUnflattenAutoExtendsArrays(t *testing.T) {
	tree, err := Unflatten(FlatMapOf("Triggers[2].Type", "A"))
	require.NoError(t, err)

	triggers, ok := tree.Get("Triggers")
	require.True(t, ok)
	require.Equal(t, value.KindArray, triggers.Kind())
	require.Equal(t, 3, triggers.Len())

	for i := 0; i < 2; i++ {
		e, _ := triggers.At(i)
		assert.Equal(t, value.KindObject, e.Kind(), "index %d", i)
		assert.Equal(t, 0, e.Len(), "index %d", i)
	}
	last, _ := triggers.At(2)
	assert.True(t, last.Equal(mustDecode(t, `{"Type":"A"}`)))
}

func TestUnflattenFillsPlaceholderLater(t *testing.T) {
	tree, err := Unflatten(FlatMapOf(
		"List[1]", "b",
		"List[0]", "a",
		"Grid[1][1]", "x",
	))
	require.NoError(t, err)
	assert.True(t, tree.Equal(mustDecode(t, `{"List":["a","b"],"Grid":[{},[{},"x"]]}`)))
}

func TestUnflattenTypesLeaves(t *testing.T) {
	tree, err := Unflatten(FlatMapOf(
		"A.Port", "42",
		"A.Ratio", "42.5",
		"A.On", "TRUE",
		"A.Name", "hello",
		"A.List", "[1,2]",
	))
	require.NoError(t, err)
	assert.True(t, tree.Equal(mustDecode(t, `{"A":{"Port":42,"Ratio":42.5,"On":true,"Name":"hello","List":[1,2]}}`)))
}

func TestUnflattenEmpty(t *testing.T) {
	tree, err := Unflatten(NewFlatMap())
	require.NoError(t, err)
	assert.Equal(t, value.KindObject, tree.Kind())
	assert.Equal(t, 0, tree.Len())
}

func TestUnflattenMalformedPath(t *testing.T) {
	_, err := Unflatten(FlatMapOf("Triggers[abc]", "1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, cfgerr.MalformedKeyPath)

	var ce *cfgerr.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Triggers[abc]", ce.Subject)
}

func TestRoundTripDropsEmptyContainers(t *testing.T) {
	tree := mustDecode(t, `{"Keep":{"A":1},"Gone":{},"Also":[],"Nested":{"X":{}}}`)
	flat, err := Flatten(tree)
	require.NoError(t, err)

	back, err := Unflatten(flat)
	require.NoError(t, err)
	assert.True(t, back.Equal(mustDecode(t, `{"Keep":{"A":1}}`)))
}

func TestSetConflicts(t *testing.T) {
	tree := mustDecode(t, `{"Leaf":5,"Obj":{"K":1},"Arr":[1],"Nil":null,"Hole":{}}`)

	tests := []struct {
		path     string
		conflict bool
	}{
		{"Leaf.B", true},
		{"Leaf[0]", true},
		{"Obj[0]", true},
		{"Arr.K", true},
		{"Arr[0].K", true},
		{"Nil.A", false},
		{"Nil[1]", false},
		{"Hole[0]", false},
		{"Obj.K", false},
		{"Leaf", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := Set(tree, keypath.MustParse(tt.path), value.String("v"))
			if tt.conflict {
				assert.ErrorIs(t, err, cfgerr.PathConflict)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetDoesNotModifyInput(t *testing.T) {
	tree := mustDecode(t, `{"A":{"B":[1,2]}}`)
	before := value.Encode(tree)

	out, err := Set(tree, keypath.MustParse("A.B[3]"), value.Int(9))
	require.NoError(t, err)

	assert.Equal(t, string(before), string(value.Encode(tree)))
	assert.True(t, out.Equal(mustDecode(t, `{"A":{"B":[1,2,{},9]}}`)))
}

func TestApplySkipsBlank(t *testing.T) {
	tree := mustDecode(t, `{"A":1,"B":{"C":2}}`)

	out, err := Apply(tree, FlatMapOf("A", "  ", "B.C", "9", "D", ""), true)
	require.NoError(t, err)
	assert.True(t, out.Equal(mustDecode(t, `{"A":1,"B":{"C":9}}`)))
}

func TestApplyIsAllOrNothing(t *testing.T) {
	tree := mustDecode(t, `{"A":1}`)
	_, err := Apply(tree, FlatMapOf("B", "2", "A.X", "3"), true)
	assert.ErrorIs(t, err, cfgerr.PathConflict)

	_, ok := tree.Get("B")
	assert.False(t, ok)
}

func TestParseScalar(t *testing.T) {
	tests := []struct {
		text string
		want value.Value
	}{
		{"42", value.Int(42)},
		{"-7", value.Int(-7)},
		{"42.5", value.Float(42.5)},
		{"1e3", value.Float(1000)},
		{"true", value.Bool(true)},
		{"False", value.Bool(false)},
		{"hello", value.String("hello")},
		{"[1,2]", value.NewArray(value.Int(1), value.Int(2))},
		{`{"a":1}`, value.NewObject(value.Member{Key: "a", Value: value.Int(1)})},
		{"[not json]", value.String("[not json]")},
		{"{", value.String("{")},
		{"NaN", value.String("NaN")},
		{"Inf", value.String("Inf")},
		{"0x10", value.String("0x10")},
		{"1e999", value.String("1e999")},
		{" 42", value.Int(42)},
		{" true\t", value.Bool(true)},
		{"4.5 ", value.Float(4.5)},
		{" [1] ", value.NewArray(value.Int(1))},
		{" hello ", value.String(" hello ")},
		{"", value.String("")},
		{"99999999999999999999", value.Float(1e20)},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ParseScalar(tt.text)
			assert.Equal(t, tt.want.Kind(), got.Kind())
			assert.True(t, tt.want.Equal(got), "got %s", got.Text())
		})
	}

	assert.True(t, ParseScalar("42").IsInt())
	assert.False(t, ParseScalar("42.5").IsInt())
}

func TestFlatMapOrder(t *testing.T) {
	f := FlatMapOf("B", "2", "A", "1")
	f.Set("B", "3")

	assert.Equal(t, []string{"B", "A"}, f.Keys())
	v, _ := f.Get("B")
	assert.Equal(t, "3", v)

	merged := f.Overlay(FlatMapOf("C", "4", "A", ""))
	assert.Equal(t, []string{"B", "A", "C"}, merged.Keys())
	assert.Equal(t, []string{"B", "C"}, merged.NonBlank().Keys())
	assert.Equal(t, 2, f.Len(), "overlay must not change the receiver")

	out, err := f.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"B":"3","A":"1"}`, string(out))
}

func TestZeroFlatMap(t *testing.T) {
	var f FlatMap
	assert.Equal(t, 0, f.Len())
	f.Set("A", "1")
	assert.Equal(t, []string{"A"}, f.Keys())
}

func TestDisplayHelpers(t *testing.T) {
	key := "AppSettings.Triggers[0].ExePath"

	assert.Equal(t, "AppSettings > Triggers [Item 0] > ExePath", HierarchicalDisplay(key, ""))
	assert.Equal(t, "AppSettings/Triggers [Item 0]/ExePath", HierarchicalDisplay(key, "/"))
	assert.Equal(t, "Grid [Item 1] [Item 2]", HierarchicalDisplay("Grid[1][2]", ""))

	assert.Equal(t, "Triggers[0] > ExePath", DisplayLabel(key, DisplayOptions{}))
	assert.Equal(t, "Port", DisplayLabel("Port", DisplayOptions{}))
	assert.Equal(t, "Server.Port", DisplayLabel("Server.Port", DisplayOptions{RootPrefix: "AppSettings", Separator: "."}))
	assert.Equal(t, "Port", DisplayLabel("AppSettings.Port", DisplayOptions{RootPrefix: "AppSettings"}))

	assert.True(t, IsArrayItem(key))
	assert.False(t, IsArrayItem("AppSettings.Port"))
	assert.True(t, IsArrayItem("Bad[x]"))

	array, idx, ok := ArrayGroup(key)
	require.True(t, ok)
	assert.Equal(t, "AppSettings.Triggers", array)
	assert.Equal(t, 0, idx)

	_, _, ok = ArrayGroup("AppSettings.Port")
	assert.False(t, ok)
}

func TestDisplayFallsBackOnMalformedKeys(t *testing.T) {
	assert.Equal(t, "A > B[", HierarchicalDisplay("A.B[", ""))
	assert.Equal(t, "B[", DisplayLabel("A.B[", DisplayOptions{}))
}
