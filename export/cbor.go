package export

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/candid-go/errors"
	"github.com/wippyai/candid-go/values"
)

// encMode uses Core Deterministic Encoding, so equal values always export to
// identical bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("export: CBOR encoder initialization failed: " + err.Error())
	}
}

// CBOR exports values as deterministic CBOR. Blobs become byte strings.
type CBOR struct{}

var _ Exporter = &CBOR{}

func NewCBOR() *CBOR {
	return &CBOR{}
}

func (*CBOR) Name() string { return "cbor" }

func (*CBOR) Export(v values.Value) ([]byte, error) {
	out, err := encMode.Marshal(Plain(v))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindEncode, err, "cbor export")
	}
	return out, nil
}
