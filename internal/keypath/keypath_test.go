package keypath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bianoble/confpatch/internal/cfgerr"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text string
		want Path
	}{
		{"Server", Path{Field("Server")}},
		{"Server.Port", Path{Field("Server"), Field("Port")}},
		{"AppSettings.Triggers[0].ExePath", Path{Field("AppSettings"), Field("Triggers"), Index(0), Field("ExePath")}},
		{"Grid[1][2]", Path{Field("Grid"), Index(1), Index(2)}},
		{"[3].Name", Path{Index(3), Field("Name")}},
		{"My Key.with-dash", Path{Field("My Key"), Field("with-dash")}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, got.String())
		})
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, text := range []string{
		"",
		"A[",
		"A]",
		"A[x]",
		"A[-1]",
		"A[]",
		"A..B",
		".A",
		"A.",
		"A.[0]",
		"A[0]B",
		"A[99999999]",
	} {
		t.Run(text, func(t *testing.T) {
			_, err := Parse(text)
			require.Error(t, err)
			assert.ErrorIs(t, err, cfgerr.MalformedKeyPath)
		})
	}
}

func TestChildDoesNotAlias(t *testing.T) {
	base := make(Path, 1, 4)
	base[0] = Field("A")

	left := base.Child(Field("L"))
	right := base.Child(Field("R"))

	assert.Equal(t, "A.L", left.String())
	assert.Equal(t, "A.R", right.String())
}

func TestValidField(t *testing.T) {
	assert.True(t, ValidField("Port"))
	assert.True(t, ValidField("with space"))
	assert.False(t, ValidField(""))
	assert.False(t, ValidField("a.b"))
	assert.False(t, ValidField("a[0]"))
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("A[") })
	assert.NotPanics(t, func() { MustParse("A[0]") })
}
