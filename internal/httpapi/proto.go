package httpapi

import (
	"io"
	"mime"
	"net/http"

	"google.golang.org/protobuf/proto"
)

// maxRequestBody caps the request body for both protobuf and JSON. A scan
// body is well under 200 bytes.
const maxRequestBody = 4096

const contentTypeProtobuf = "application/x-protobuf"

// isProtobuf reports whether the request body is protobuf. Kiosk readers
// send "application/x-protobuf".
func isProtobuf(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == contentTypeProtobuf ||
		mt == "application/protobuf" ||
		mt == "application/octet-stream"
}

func readProto(r *http.Request, msg proto.Message) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return err
	}
	return proto.Unmarshal(body, msg)
}

func writeProto(w http.ResponseWriter, status int, msg proto.Message) {
	data, err := proto.Marshal(msg)
	if err != nil {
		http.Error(w, "proto marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeProtobuf)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
