package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type user struct {
	ID      string    `json:"id" msgpack:"id" cbor:"id"`
	Name    string    `json:"name" msgpack:"name" cbor:"name"`
	Created time.Time `json:"created" msgpack:"created" cbor:"created"`
}

func roundTrip[V any](t *testing.T, c Codec[V], v V) V {
	t.Helper()
	b, err := c.Encode(v)
	require.NoError(t, err)
	require.NotNil(t, b)
	got, err := c.Decode(b)
	require.NoError(t, err)
	return got
}

func TestStructCodecs(t *testing.T) {
	u := user{ID: "1", Name: "Ada", Created: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	for name, c := range map[string]Codec[user]{
		"json":            JSON[user]{},
		"msgpack":         Msgpack[user]{},
		"msgpack json":    Msgpack[user]{UseJSONTag: true},
		"cbor":            MustCBOR[user](false),
		"cbor determined": MustCBOR[user](true),
	} {
		t.Run(name, func(t *testing.T) {
			got := roundTrip(t, c, u)
			require.Equal(t, u.ID, got.ID)
			require.Equal(t, u.Name, got.Name)
			require.True(t, u.Created.Equal(got.Created))
		})
	}
}

func TestDeterministicCBOR(t *testing.T) {
	c := MustCBOR[map[string]int](true)
	a, err := c.Encode(map[string]int{"b": 2, "a": 1, "c": 3})
	require.NoError(t, err)
	b, err := c.Encode(map[string]int{"c": 3, "a": 1, "b": 2})
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestCBORRejectsDuplicateKeys(t *testing.T) {
	// {"a": 1, "a": 2}
	dup := []byte{0xa2, 0x61, 'a', 0x01, 0x61, 'a', 0x02}
	_, err := MustCBOR[map[string]int](false).Decode(dup)
	require.Error(t, err)
}

func TestProtobuf(t *testing.T) {
	c := NewProtobuf(func() *structpb.Struct { return &structpb.Struct{} })
	msg, err := structpb.NewStruct(map[string]any{"name": "Ada", "age": 36.0})
	require.NoError(t, err)

	got := roundTrip[*structpb.Struct](t, c, msg)
	require.True(t, proto.Equal(msg, got))

	empty, err := c.Encode(&structpb.Struct{})
	require.NoError(t, err)
	require.NotNil(t, empty, "an empty message must not read as absent")
}

func TestRawCodecs(t *testing.T) {
	require.Equal(t, []byte{1, 2}, roundTrip[[]byte](t, Bytes{}, []byte{1, 2}))
	require.Equal(t, "héllo", roundTrip[string](t, String{}, "héllo"))
	require.Equal(t, "", roundTrip[string](t, String{}, ""))
}

func TestLimit(t *testing.T) {
	c := Limit[string]{Inner: String{}, MaxEncode: 4, MaxDecode: 3}

	_, err := c.Encode("12345")
	require.ErrorIs(t, err, ErrTooLarge)
	b, err := c.Encode("123")
	require.NoError(t, err)

	_, err = c.Decode([]byte("1234"))
	require.ErrorIs(t, err, ErrTooLarge)
	v, err := c.Decode(b)
	require.NoError(t, err)
	require.Equal(t, "123", v)

	unbounded := Limit[string]{Inner: String{}}
	require.Equal(t, "anything at all", roundTrip[string](t, unbounded, "anything at all"))
}
