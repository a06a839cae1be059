package format

import (
	"github.com/tidwall/jsonc"

	"github.com/bianoble/confpatch/internal/cfgerr"
	"github.com/bianoble/confpatch/internal/codec"
	"github.com/bianoble/confpatch/internal/value"
)

// JSONPatcher patches JSON documents through the path codec.
//
// In Patch mode the current document is parsed and each override is set in
// place: existing members keep their position, new members are appended to
// their object. In Overwrite mode the current content is ignored and the
// result holds only the overrides.
type JSONPatcher struct{}

func (JSONPatcher) Patch(req Request) ([]byte, error) {
	tree := value.EmptyObject()
	if req.Mode != Overwrite {
		data := req.Current
		if req.AllowComments {
			data = jsonc.ToJSON(data)
		}
		var err error
		tree, err = value.Decode(data)
		if err != nil {
			return nil, cfgerr.New(cfgerr.CorruptConfigFile, req.Subject, err)
		}
	}

	tree, err := codec.Apply(tree, req.Overrides, true)
	if err != nil {
		return nil, err
	}
	return value.Encode(tree), nil
}
