package cfgerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesKind(t *testing.T) {
	err := New(MalformedKeyPath, "Triggers[abc]", errors.New("index is not a number"))

	assert.ErrorIs(t, err, MalformedKeyPath)
	assert.NotErrorIs(t, err, PathConflict)
	assert.Equal(t, "malformed key path 'Triggers[abc]': index is not a number", err.Error())
}

func TestErrorMatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("component scheduler: %w", New(TargetFileNotFound, "/opt/app/appsettings.json", nil))

	assert.ErrorIs(t, err, TargetFileNotFound)
	assert.Equal(t, TargetFileNotFound, KindOf(err))
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := New(WriteFailure, "x.json", cause)

	assert.ErrorIs(t, err, cause)
}

func TestKindOfPlainKindAndForeignError(t *testing.T) {
	assert.Equal(t, UnsupportedFormat, KindOf(fmt.Errorf("wrap: %w", UnsupportedFormat)))
	assert.Equal(t, Kind(""), KindOf(errors.New("something else")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestNewfWithoutSubject(t *testing.T) {
	err := Newf(CorruptConfigFile, "", "line %d", 3)
	assert.Equal(t, "corrupt config file: line 3", err.Error())
}
