package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/ranksum/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntry(t *testing.T) {
	Convey("Given an Entry with descriptive fields", t, func() {
		entry := types.Entry{
			Place:  1,
			Points: 4,
			Fields: map[string]any{"id": 7, "name": "Blake"},
		}

		Convey("When marshalling to JSON", func() {
			data, err := json.Marshal(entry)
			So(err, ShouldBeNil)

			var got map[string]any
			So(json.Unmarshal(data, &got), ShouldBeNil)

			Convey("Then fields are flattened next to place and points", func() {
				So(got, ShouldResemble, map[string]any{
					"id":     float64(7),
					"name":   "Blake",
					"place":  float64(1),
					"points": float64(4),
				})
			})
		})

		Convey("When a descriptive field is named like a computed one", func() {
			entry.Fields["points"] = "stale"
			data, err := json.Marshal(entry)
			So(err, ShouldBeNil)

			Convey("Then the computed value wins", func() {
				So(string(data), ShouldContainSubstring, `"points":4`)
			})
		})

		Convey("When the entry has no fields", func() {
			data, err := json.Marshal(types.Entry{Place: 2})
			So(err, ShouldBeNil)

			Convey("Then only place and points are emitted", func() {
				So(string(data), ShouldEqual, `{"place":2,"points":0}`)
			})
		})
	})
}

func TestBatchResult(t *testing.T) {
	Convey("Given a failed batch item", t, func() {
		res := types.BatchResult{Index: 3, Error: &types.Error{Code: "invalid_request", Message: "bad"}}

		Convey("Then the board is omitted from JSON", func() {
			data, err := json.Marshal(res)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `{"index":3,"error":{"code":"invalid_request","message":"bad"}}`)
		})
	})
}
