package codec

import "google.golang.org/protobuf/proto"

// Protobuf stores proto messages. Marshalling is deterministic so equal
// messages compress to equal payloads.
type Protobuf[T proto.Message] struct {
	new func() T // constructor for a concrete message (e.g., func() *mypb.User { return &mypb.User{} })
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

var marshalOpts = proto.MarshalOptions{Deterministic: true}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	b, err := marshalOpts.Marshal(v)
	if err == nil && b == nil {
		// empty message; nil would read as absent
		b = []byte{}
	}
	return b, err
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}
