package testathletes

import (
	"testing"

	"github.com/okian/ranksum/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	Convey("Given a generator configuration", t, func() {
		cfg := Config{Count: 200, Seed: 7, DNFRate: 0.1, Divisions: 2, Regions: 4}

		Convey("When generating twice with the same seed", func() {
			a, err := Generate(cfg)
			So(err, ShouldBeNil)
			b, err := Generate(cfg)
			So(err, ShouldBeNil)

			Convey("Then the rows are identical", func() {
				So(a, ShouldResemble, b)
				So(len(a), ShouldEqual, 200)
			})

			Convey("Then identifiers are unique and every column is present", func() {
				seen := map[any]bool{}
				for _, row := range a {
					So(seen[row[ColumnID]], ShouldBeFalse)
					seen[row[ColumnID]] = true
					for _, col := range Columns() {
						So(row, ShouldContainKey, col)
					}
				}
			})

			Convey("Then some metric values are DNF", func() {
				dnf := 0
				for _, row := range a {
					for _, col := range MetricColumns {
						if model.IsDNF(row[col]) {
							dnf++
						}
					}
				}
				So(dnf, ShouldBeGreaterThan, 0)
				So(dnf, ShouldBeLessThan, len(a)*len(MetricColumns))
			})
		})

		Convey("When the DNF rate is zero", func() {
			cfg.DNFRate = 0
			rows, err := Generate(cfg)
			So(err, ShouldBeNil)

			Convey("Then no value is DNF", func() {
				for _, row := range rows {
					for _, col := range MetricColumns {
						So(model.IsDNF(row[col]), ShouldBeFalse)
					}
				}
			})
		})

		Convey("When the configuration is invalid", func() {
			_, err := Generate(Config{Count: -1})
			So(err, ShouldNotBeNil)
			_, err = Generate(Config{Count: 1, DNFRate: 2})
			So(err, ShouldNotBeNil)
		})
	})
}
