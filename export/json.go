package export

import (
	"encoding/json"

	"github.com/wippyai/candid-go/errors"
	"github.com/wippyai/candid-go/values"
)

// JSON exports values as JSON. Blobs become base64 strings.
type JSON struct {
	// Indent, when set, pretty-prints with this indent per level.
	Indent string
}

var _ Exporter = &JSON{}

// NewJSON creates a JSON exporter with two-space indentation.
func NewJSON() *JSON {
	return &JSON{Indent: "  "}
}

func (*JSON) Name() string { return "json" }

func (e *JSON) Export(v values.Value) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if e.Indent != "" {
		out, err = json.MarshalIndent(Plain(v), "", e.Indent)
	} else {
		out, err = json.Marshal(Plain(v))
	}
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindEncode, err, "json export")
	}
	return out, nil
}
