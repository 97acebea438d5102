package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	repository "github.com/okian/ranksum/internal/adapters/repository"
	app "github.com/okian/ranksum/internal/app"
	"github.com/okian/ranksum/internal/config"
	"github.com/okian/ranksum/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainConfiguration(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		t.Setenv("RANKSUM_ADDR", ":8080")
		t.Setenv("RANKSUM_QUEUE_SIZE", "100")
		t.Setenv("RANKSUM_WORKER_COUNT", "4")
		t.Setenv("RANKSUM_SEED_ATHLETES", "40")

		convey.Convey("Then configuration should be loadable", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 100)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			convey.So(cfg.SeedAthletes, convey.ShouldEqual, 40)
			convey.So(cfg.SourceDriver, convey.ShouldEqual, config.DriverMemory)
		})
	})
}

func TestOpenSource(t *testing.T) {
	convey.Convey("Given a configuration", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)

		convey.Convey("When the driver is memory", func() {
			cfg.SeedAthletes = 25
			src, err := openSource(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer src.Close()

			convey.Convey("Then it is seeded with generated athletes", func() {
				mem, ok := src.(*repository.MemorySource)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(mem.Len(), convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When the driver is sqlite", func() {
			cfg.SourceDriver = config.DriverSQLite
			cfg.DBName = filepath.Join(t.TempDir(), "athletes.db")
			src, err := openSource(ctx, cfg)

			convey.Convey("Then a SQL source is opened on the file", func() {
				convey.So(err, convey.ShouldBeNil)
				_, ok := src.(*repository.SQLSource)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(src.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the driver is unknown", func() {
			cfg.SourceDriver = "oracle"
			_, err := openSource(ctx, cfg)

			convey.Convey("Then it fails with ErrUnknownDialect", func() {
				convey.So(errors.Is(err, repository.ErrUnknownDialect), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When database settings are mapped", func() {
			cfg.DBHost, cfg.DBUser, cfg.DBPassword = "db", "rank", "pw"
			c := dsnConfig(cfg)

			convey.Convey("Then every field is carried over", func() {
				convey.So(c.Host, convey.ShouldEqual, "db")
				convey.So(c.Port, convey.ShouldEqual, cfg.DBPort)
				convey.So(c.User, convey.ShouldEqual, "rank")
				convey.So(c.Password, convey.ShouldEqual, "pw")
				convey.So(c.Name, convey.ShouldEqual, cfg.DBName)
				convey.So(c.Charset, convey.ShouldEqual, cfg.DBCharset)
			})
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given a started service on a seeded memory source", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.SeedAthletes = 60
		src, err := openSource(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)

		svc := app.New(app.WithSource(src), app.WithWorkerCount(2), app.WithQueueSize(8))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		mux := newMux(ctx, svc)

		get := func(target string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
			return w
		}

		convey.Convey("Then docs and business routes are mounted", func() {
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then a leaderboard is ranked by ascending points", func() {
			w := get("/leaderboard?division=1&columns=id,name,back_squat_lbs,fran_time_secs&limit=10")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

			var board struct {
				Entries []struct {
					Place  int `json:"place"`
					Points int `json:"points"`
				} `json:"entries"`
			}
			convey.So(json.Unmarshal(w.Body.Bytes(), &board), convey.ShouldBeNil)
			convey.So(board.Entries, convey.ShouldNotBeEmpty)
			for i := 1; i < len(board.Entries); i++ {
				convey.So(board.Entries[i].Points, convey.ShouldBeGreaterThanOrEqualTo, board.Entries[i-1].Points)
				convey.So(board.Entries[i].Place, convey.ShouldEqual, i+1)
			}
		})

		convey.Convey("Then the metric updaters run without panicking", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}
