package model_test

import (
	"encoding/json"
	"math"
	"testing"

	model "github.com/okian/ranksum/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestNumber(t *testing.T) {
	convey.Convey("Given column values of different driver types", t, func() {
		convey.Convey("When they are numeric", func() {
			convey.Convey("Then they convert to float64", func() {
				for _, v := range []any{int(3), int8(3), int16(3), int32(3), int64(3), uint(3), uint8(3), uint16(3), uint32(3), uint64(3), float32(3), float64(3), json.Number("3"), "3", " 3 ", []byte("3")} {
					f, ok := model.Number(v)
					convey.So(ok, convey.ShouldBeTrue)
					convey.So(f, convey.ShouldEqual, 3.0)
				}
			})
		})

		convey.Convey("When they are not numeric", func() {
			convey.Convey("Then the conversion reports false", func() {
				for _, v := range []any{nil, true, "abc", []byte("x"), json.Number("nope"), math.NaN(), struct{}{}} {
					_, ok := model.Number(v)
					convey.So(ok, convey.ShouldBeFalse)
				}
			})
		})
	})
}

func TestIsDNF(t *testing.T) {
	convey.Convey("Given the DNF sentinel in several encodings", t, func() {
		convey.Convey("Then -1 is detected regardless of type", func() {
			convey.So(model.IsDNF(-1), convey.ShouldBeTrue)
			convey.So(model.IsDNF(int64(-1)), convey.ShouldBeTrue)
			convey.So(model.IsDNF(-1.0), convey.ShouldBeTrue)
			convey.So(model.IsDNF([]byte("-1")), convey.ShouldBeTrue)
		})

		convey.Convey("Then other values are not DNF", func() {
			convey.So(model.IsDNF(0), convey.ShouldBeFalse)
			convey.So(model.IsDNF(-1.5), convey.ShouldBeFalse)
			convey.So(model.IsDNF("n/a"), convey.ShouldBeFalse)
		})
	})
}

func TestKey(t *testing.T) {
	convey.Convey("Given identifier values", t, func() {
		convey.Convey("Then scalar ids produce stable keys", func() {
			for v, want := range map[any]string{
				"athlete-7":     "athlete-7",
				int(7):          "7",
				int32(7):        "7",
				int64(7):        "7",
				uint64(7):       "7",
				float64(7):      "7",
				uint16(7):       "7",
				json.Number("7"): "7",
			} {
				k, ok := model.Key(v)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(k, convey.ShouldEqual, want)
			}
			k, ok := model.Key([]byte("b-1"))
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(k, convey.ShouldEqual, "b-1")
		})

		convey.Convey("Then missing ids are rejected", func() {
			for _, v := range []any{nil, "", []byte{}, math.NaN(), true} {
				_, ok := model.Key(v)
				convey.So(ok, convey.ShouldBeFalse)
			}
		})
	})
}

func TestRow(t *testing.T) {
	convey.Convey("Given an athlete row", t, func() {
		row := model.Row{"id": 1, "name": "A", "back_squat_lbs": 300}

		convey.Convey("When cloning and projecting", func() {
			clone := row.Clone()
			clone["name"] = "changed"
			projected := row.Project([]string{"id", "name", "missing"})

			convey.Convey("Then the original is untouched", func() {
				convey.So(row["name"], convey.ShouldEqual, "A")
				convey.So(projected, convey.ShouldResemble, model.Row{"id": 1, "name": "A"})
			})
		})
	})
}
