package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it uses the ranksum namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "ranksum")
				So(manager.subsystem, ShouldEqual, "leaderboard")
				So(manager.enabled, ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("test_prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(false),
				WithAthleteBuckets([]float64{10, 100}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.summaryRequests.Inc()

			Convey("Then the options are applied to the registered metrics", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.athleteBuckets, ShouldResemble, []float64{10, 100})
				So(manager.enabled, ShouldBeFalse)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_namespace_test_subsystem_test_prefix_summary_requests_total")
			})
		})

		Convey("When passing empty option values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithAthleteBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "ranksum")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.athleteBuckets, ShouldResemble, defaultAthleteBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording leaderboard computations", func() {
			before := testutil.ToFloat64(globalManager.leaderboardRequests.WithLabelValues(OutcomeOK))
			invalidBefore := testutil.ToFloat64(globalManager.leaderboardRequests.WithLabelValues(OutcomeInvalid))
			RecordLeaderboard(OutcomeOK, 12.5, 3)
			RecordLeaderboard(OutcomeInvalid, 0.2, 0)

			Convey("Then the counters move per outcome", func() {
				So(testutil.ToFloat64(globalManager.leaderboardRequests.WithLabelValues(OutcomeOK)), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.leaderboardRequests.WithLabelValues(OutcomeInvalid)), ShouldEqual, invalidBefore+1)
			})
		})

		Convey("When recording with the manager disabled", func() {
			SetEnabled(false)
			defer SetEnabled(true)
			before := testutil.ToFloat64(globalManager.leaderboardRequests.WithLabelValues(OutcomeOK))
			RecordLeaderboard(OutcomeOK, 1, 1)

			Convey("Then nothing is recorded", func() {
				So(testutil.ToFloat64(globalManager.leaderboardRequests.WithLabelValues(OutcomeOK)), ShouldEqual, before)
			})
		})

		Convey("When recording DNF exclusions", func() {
			before := testutil.ToFloat64(globalManager.athletesExcludedDNF)
			RecordAthletesExcluded(4)
			RecordAthletesExcluded(0)
			RecordAthletesExcluded(-2)

			Convey("Then only positive counts are added", func() {
				So(testutil.ToFloat64(globalManager.athletesExcludedDNF), ShouldEqual, before+4)
			})
		})

		Convey("When recording source queries", func() {
			before := testutil.ToFloat64(globalManager.sourceRowsFetched)
			errBefore := testutil.ToFloat64(globalManager.sourceQueryErrors)
			RecordSourceQuery(3.0, 25)
			RecordSourceQueryError()

			Convey("Then rows and errors are counted", func() {
				So(testutil.ToFloat64(globalManager.sourceRowsFetched), ShouldEqual, before+25)
				So(testutil.ToFloat64(globalManager.sourceQueryErrors), ShouldEqual, errBefore+1)
			})
		})

		Convey("When updating queue gauges", func() {
			UpdateQueueCapacity(100)
			UpdateQueueSize(25)
			UpdateQueueUtilization(0.25)

			Convey("Then the gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 100)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 25)
				So(testutil.ToFloat64(globalManager.queueUtilization), ShouldEqual, 0.25)
			})
		})

		Convey("When recording the remaining metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordSummary()
					RecordHTTPRequest("leaderboard", "GET", "200")
					RecordHTTPRequestDuration("leaderboard", "GET", "200", 5.0)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					UpdateWorkerCount(4)
					RecordWorkerProcessingLatency(10)
					RecordWorkerError()
					RecordErrorByComponent("source", "query_failed")
					RecordErrorByType("source_error", "high")
					RecordErrorByEndpoint("leaderboard", "GET", "client_error")
					RecordErrorLatency("http", "client_error", 1.0)
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.3)
				}, ShouldNotPanic)
			})
		})

		Convey("When gathering from the custom registry", func() {
			RecordSummary()
			families, err := GetRegistry().Gather()

			Convey("Then ranksum metrics are exposed", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
