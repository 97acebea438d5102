package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/ranksum/internal/domain/model"
	"github.com/okian/ranksum/internal/testathletes"
	"github.com/okian/ranksum/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestSource(t *testing.T, opts ...Option) *SQLSource {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	s, err := Open(context.Background(), SQLite, ":memory:", opts...)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStatement(t *testing.T) {
	Convey("Given a MySQL source", t, func() {
		So(logger.Init(), ShouldBeNil)
		s, err := NewSQLSource(nil, MySQL)
		So(err, ShouldBeNil)

		Convey("When the query is worldwide", func() {
			stmt, args, err := s.Statement(Query{
				Division: 1,
				Columns:  []string{"id", "name", "back_squat_lbs"},
				Metrics:  []string{"back_squat_lbs", "fran_time_secs"},
			})
			So(err, ShouldBeNil)

			Convey("Then values are bound and the region filter is omitted", func() {
				So(stmt, ShouldEqual, "SELECT `id`, `name`, `back_squat_lbs`, `fran_time_secs` FROM `athlete` "+
					"WHERE `division_id` = ? AND `back_squat_lbs` <> ? AND `fran_time_secs` <> ?")
				So(args, ShouldResemble, []any{int64(1), model.DNF, model.DNF})
			})
		})

		Convey("When a region is set", func() {
			stmt, args, err := s.Statement(Query{Division: 2, Region: 5, Columns: []string{"id"}})
			So(err, ShouldBeNil)

			Convey("Then it is bound after the division", func() {
				So(stmt, ShouldEqual, "SELECT `id` FROM `athlete` WHERE `division_id` = ? AND `region_id` = ?")
				So(args, ShouldResemble, []any{int64(2), int64(5)})
			})
		})

		Convey("When a column name is not a plain identifier", func() {
			_, _, err := s.Statement(Query{Division: 1, Columns: []string{"id", "name`; DROP TABLE athlete; --"}})

			Convey("Then the query is rejected", func() {
				So(errors.Is(err, ErrInvalidQuery), ShouldBeTrue)
				So(errors.Is(err, ErrInvalidIdentifier), ShouldBeTrue)
			})
		})

		Convey("When the query itself is invalid", func() {
			_, _, err := s.Statement(Query{Division: 0, Columns: []string{"id"}})
			So(errors.Is(err, ErrInvalidQuery), ShouldBeTrue)
			_, _, err = s.Statement(Query{Division: 1, Region: -1, Columns: []string{"id"}})
			So(errors.Is(err, ErrInvalidQuery), ShouldBeTrue)
			_, _, err = s.Statement(Query{Division: 1})
			So(errors.Is(err, ErrInvalidQuery), ShouldBeTrue)
		})
	})

	Convey("Given a PostgreSQL source with a custom layout", t, func() {
		So(logger.Init(), ShouldBeNil)
		s, err := NewSQLSource(nil, Postgres, WithTable("athletes"), WithDivisionColumn("div"), WithRegionColumn("reg"))
		So(err, ShouldBeNil)

		Convey("Then placeholders are numbered and identifiers double-quoted", func() {
			stmt, _, err := s.Statement(Query{Division: 1, Region: 2, Columns: []string{"id"}, Metrics: []string{"max_pull_ups"}})
			So(err, ShouldBeNil)
			So(stmt, ShouldEqual, `SELECT "id", "max_pull_ups" FROM "athletes" WHERE "div" = $1 AND "reg" = $2 AND "max_pull_ups" <> $3`)
		})
	})

	Convey("Given an invalid table name", t, func() {
		So(logger.Init(), ShouldBeNil)
		_, err := NewSQLSource(nil, MySQL, WithTable("athlete;"))
		So(errors.Is(err, ErrInvalidIdentifier), ShouldBeTrue)
	})
}

func TestDialect(t *testing.T) {
	Convey("Given dialect names", t, func() {
		for name, want := range map[string]Dialect{"mysql": MySQL, "PostgreSQL": Postgres, "sqlite3": SQLite} {
			d, err := DialectFor(name)
			So(err, ShouldBeNil)
			So(d.Name, ShouldEqual, want.Name)
		}
		_, err := DialectFor("oracle")
		So(errors.Is(err, ErrUnknownDialect), ShouldBeTrue)
	})

	Convey("Given connection settings", t, func() {
		c := DSNConfig{Host: "db", Port: 3306, User: "rank", Password: "s3cret", Name: "games", Charset: "utf8mb4"}

		Convey("Then each dialect formats its own DSN", func() {
			So(MySQL.DSN(c), ShouldEqual, "rank:s3cret@tcp(db:3306)/games?charset=utf8mb4")
			c.Port = 5432
			So(Postgres.DSN(c), ShouldEqual, "postgres://rank:s3cret@db:5432/games?client_encoding=UTF8")
			So(SQLite.DSN(DSNConfig{Name: ":memory:"}), ShouldEqual, ":memory:")
		})
	})
}

func TestSQLSourceAthletes(t *testing.T) {
	Convey("Given an SQLite table loaded with generated athletes", t, func() {
		s := newTestSource(t, WithTimeout(5*time.Second))
		ctx := context.Background()
		cfg := testathletes.DefaultConfig()
		cfg.DNFRate = 0.15
		rows, err := testathletes.Generate(cfg)
		So(err, ShouldBeNil)
		So(s.Load(ctx, testathletes.Columns(), rows), ShouldBeNil)

		metrics := []string{"back_squat_lbs", "fran_time_secs"}

		Convey("When querying a division worldwide", func() {
			got, err := s.Athletes(ctx, Query{Division: 1, Columns: []string{"id", "name"}, Metrics: metrics})
			So(err, ShouldBeNil)

			Convey("Then every matching non-DNF athlete is returned", func() {
				want := 0
				for _, r := range rows {
					if r["division_id"] == int64(1) && !hasDNF(r, metrics) {
						want++
					}
				}
				So(len(got), ShouldEqual, want)
				for _, r := range got {
					So(r, ShouldContainKey, "id")
					So(r, ShouldContainKey, "back_squat_lbs")
					So(model.IsDNF(r["fran_time_secs"]), ShouldBeFalse)
					_, isString := r["name"].(string)
					So(isString, ShouldBeTrue)
				}
			})
		})

		Convey("When querying one region", func() {
			got, err := s.Athletes(ctx, Query{Division: 1, Region: 2, Columns: []string{"id", "region_id"}})
			So(err, ShouldBeNil)

			Convey("Then only that region is returned", func() {
				So(got, ShouldNotBeEmpty)
				for _, r := range got {
					So(r["region_id"], ShouldEqual, int64(2))
				}
			})
		})

		Convey("When a column does not exist", func() {
			_, err := s.Athletes(ctx, Query{Division: 1, Columns: []string{"id", "snatch_lbs"}})

			Convey("Then the error is a query failure", func() {
				So(errors.Is(err, ErrQuery), ShouldBeTrue)
			})
		})

		Convey("When the context is already canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := s.Athletes(canceled, Query{Division: 1, Columns: []string{"id"}})

			Convey("Then the cancellation is preserved in the error chain", func() {
				So(errors.Is(err, ErrQuery), ShouldBeTrue)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When the source is closed", func() {
			So(s.Close(), ShouldBeNil)
			So(s.Close(), ShouldBeNil)
			_, err := s.Athletes(ctx, Query{Division: 1, Columns: []string{"id"}})
			So(errors.Is(err, ErrClosed), ShouldBeTrue)
		})
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given scanned driver values", t, func() {
		So(normalize([]byte("Ana")), ShouldEqual, "Ana")
		So(normalize(int64(4)), ShouldEqual, int64(4))
		So(normalize(nil), ShouldBeNil)
	})
}
