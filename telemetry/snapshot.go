// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry is the observability surface wrapped around a tick:
// compact JSON snapshots of what the deactivator and hull builder did,
// a DynamoDB sink for longer-term tick statistics, and a websocket live
// feed for a debug client watching a running simulation. None of this
// is exercised by the core algorithms themselves — it is the ambient
// stack a tick loop reports through, grounded on jsoniter.go,
// cloud/db/dynamodb.go and socket_client.go respectively.
package telemetry

import (
	"reflect"
	"sort"
	"unsafe"

	jsoniter "github.com/json-iterator/go"

	"github.com/SunGuangdong/physgo/deactivation"
	"github.com/SunGuangdong/physgo/handles"
	"github.com/SunGuangdong/physgo/hull"
)

// json is a jsoniter codec tuned the way jsoniter.go tunes one for
// mk48's Update messages: hex-quoted handles instead of the bare
// decimal uint32s encoding/json would produce, sorted map keys so two
// snapshots of the same tick diff cleanly, and 6-digit floats since a
// debug feed has no use for float32's full decimal precision.
var json = func() jsoniter.API {
	neverEmpty := func(unsafe.Pointer) bool { return false }

	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(handles.BodyHandle(0)).String(), encodeBodyHandle, neverEmpty)
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(handles.ConstraintHandle(0)).String(), encodeConstraintHandle, neverEmpty)
	jsoniter.RegisterFieldEncoderFunc(reflect.TypeOf(TickSnapshot{}).String(), "AcceptedIslands", encodeAcceptedIslands, neverEmpty)

	return jsoniter.Config{
		MarshalFloatWith6Digits:       true,
		EscapeHTML:                    false,
		SortMapKeys:                   true,
		TagKey:                        "json",
		ObjectFieldMustBeSimpleString: true,
		CaseSensitive:                 true,
	}.Froze()
}()

func encodeBodyHandle(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	h := *(*handles.BodyHandle)(ptr)
	stream.SetBuffer(append(h.AppendText(append(stream.Buffer(), '"')), '"'))
}

func encodeConstraintHandle(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	h := *(*handles.ConstraintHandle)(ptr)
	stream.SetBuffer(append(h.AppendText(append(stream.Buffer(), '"')), '"'))
}

// encodeAcceptedIslands writes TickSnapshot.AcceptedIslands sorted by
// SetID, matching encodeUpdateContacts' habit in jsoniter.go of
// re-sorting a map-ish field at encode time rather than keeping the
// source slice sorted year-round.
func encodeAcceptedIslands(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	islands := *(*[]deactivation.AcceptedIsland)(ptr)
	sorted := append([]deactivation.AcceptedIsland(nil), islands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SetID < sorted[j].SetID })
	stream.WriteVal(sorted)
}

// TickSnapshot is the per-tick debug payload: the deactivator's report
// for the tick plus, when a hull build ran this tick, its resulting
// topology. Tick is supplied by the caller since neither subsystem
// tracks wall-clock or frame count itself.
type TickSnapshot struct {
	Tick            uint64                         `json:"tick"`
	Report          deactivation.TickReport        `json:"report"`
	AcceptedIslands []deactivation.AcceptedIsland  `json:"acceptedIslands"`
	Hull            *hull.HullData                 `json:"hull,omitempty"`
}

// MarshalSnapshot renders a TickSnapshot through the package's tuned
// codec. The AcceptedIslands field is carried twice on the struct (once
// under Report, once top level) so the custom field encoder has a
// distinct, independently-tagged target; NewTickSnapshot keeps them in
// sync.
func MarshalSnapshot(snap TickSnapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// NewTickSnapshot builds a TickSnapshot from a tick's report, promoting
// its accepted islands to the top-level field the custom encoder sorts.
func NewTickSnapshot(tick uint64, report deactivation.TickReport, hullData *hull.HullData) TickSnapshot {
	return TickSnapshot{
		Tick:            tick,
		Report:          report,
		AcceptedIslands: report.AcceptedIslands,
		Hull:            hullData,
	}
}
