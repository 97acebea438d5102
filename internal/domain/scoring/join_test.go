package scoring

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInnerJoin(t *testing.T) {
	Convey("Given two score tables with overlapping keys", t, func() {
		left := newScoreTable(3)
		left.add("a", map[string]int{"x": 1})
		left.add("b", map[string]int{"x": 2})
		left.add("c", map[string]int{"x": 3})
		right := newScoreTable(2)
		right.add("c", map[string]int{"y": 30})
		right.add("a", map[string]int{"y": 10})

		Convey("When joining", func() {
			out := innerJoin(left, right)

			Convey("Then only shared keys remain, in left order, with both fields", func() {
				So(out.order, ShouldResemble, []string{"a", "c"})
				So(out.rows["a"], ShouldResemble, map[string]int{"x": 1, "y": 10})
				So(out.rows["c"], ShouldResemble, map[string]int{"x": 3, "y": 30})
			})

			Convey("Then the inputs are not modified", func() {
				So(left.rows["a"], ShouldResemble, map[string]int{"x": 1})
				So(right.rows["a"], ShouldResemble, map[string]int{"y": 10})
			})
		})

		Convey("When a key is added twice", func() {
			left.add("a", map[string]int{"x": 9})

			Convey("Then it keeps its position with the new fields", func() {
				So(left.order, ShouldResemble, []string{"a", "b", "c"})
				So(left.rows["a"]["x"], ShouldEqual, 9)
			})
		})
	})
}

func TestComposite(t *testing.T) {
	Convey("Given merged rank fields", t, func() {
		merged := newScoreTable(1)
		merged.add("a", map[string]int{RankField("back_squat_lbs"): 2, RankField("fran_time_secs"): 5})

		Convey("Then composite sums them into points", func() {
			out := composite(merged)
			So(out.rows["a"], ShouldResemble, map[string]int{PointsField: 7})
		})
	})
}
