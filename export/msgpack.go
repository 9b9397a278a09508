package export

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/wippyai/candid-go/errors"
	"github.com/wippyai/candid-go/values"
)

// MsgPack exports values as MessagePack with map keys sorted.
type MsgPack struct{}

var _ Exporter = &MsgPack{}

func NewMsgPack() *MsgPack {
	return &MsgPack{}
}

func (*MsgPack) Name() string { return "msgpack" }

func (*MsgPack) Export(v values.Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(Plain(v)); err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindEncode, err, "msgpack export")
	}
	return buf.Bytes(), nil
}
