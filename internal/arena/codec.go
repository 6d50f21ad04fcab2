package arena

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec selects the wire format for frames sent to a client. Commands from
// the client are always JSON text.
type Codec string

const (
	CodecJSON    Codec = "json"
	CodecMsgpack Codec = "msgpack"
)

// ParseCodec maps a query value onto a codec, defaulting to JSON.
func ParseCodec(s string) Codec {
	if s == string(CodecMsgpack) {
		return CodecMsgpack
	}
	return CodecJSON
}

func (c Codec) Marshal(v any) ([]byte, error) {
	if c == CodecMsgpack {
		return msgpack.Marshal(v)
	}
	return json.Marshal(v)
}

func (c Codec) Unmarshal(data []byte, v any) error {
	if c == CodecMsgpack {
		return msgpack.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

// MessageType is the websocket frame type the codec's payloads travel in.
func (c Codec) MessageType() int {
	if c == CodecMsgpack {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}
