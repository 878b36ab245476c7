package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/msgpack"
)

// codec encodes and decodes one wire format.
type codec interface {
	ContentType() string
	Decode(r io.Reader, v any) error
	Encode(w io.Writer, v any) error
}

type jsonCodec struct{}

func (jsonCodec) ContentType() string { return contentTypeJSON }

func (jsonCodec) Decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (jsonCodec) Encode(w io.Writer, v any) error { return json.NewEncoder(w).Encode(v) }

type msgpackCodec struct{}

func (msgpackCodec) ContentType() string { return contentTypeMsgpack }

func (msgpackCodec) Decode(r io.Reader, v any) error {
	dec := msgpack.NewDecoder(r)
	dec.DisallowUnknownFields(true)
	return dec.Decode(v)
}

func (msgpackCodec) Encode(w io.Writer, v any) error { return msgpack.NewEncoder(w).Encode(v) }

// codecFor picks the codec matching the request Content-Type.
func codecFor(r *http.Request) codec {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && (mediaType == contentTypeMsgpack || mediaType == "application/x-msgpack") {
		return msgpackCodec{}
	}
	return jsonCodec{}
}

// writeResponse encodes v with c after setting the status code.
func writeResponse(w http.ResponseWriter, c codec, status int, v any) error {
	w.Header().Set("Content-Type", c.ContentType())
	w.WriteHeader(status)
	return c.Encode(w, v)
}
