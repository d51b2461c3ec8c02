package reflectx

// BytesDecoder defines an interface for decoding an object from bytes.
// ParseValue uses it for constructor arguments that have their own raw
// encoding.
type BytesDecoder interface {
	DecodeFromBytes([]byte) error
}
