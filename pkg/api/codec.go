// Package api defines the request and response messages of the Osusu RPC services.
// Messages are plain Go structs carried by connect with JSON encoding.
package api

import "encoding/json"

// JSONCodec encodes messages with encoding/json under the "json" codec name, so plain
// structs travel over the connect protocol with Content-Type application/json.
type JSONCodec struct{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal implements connect.Codec.
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
