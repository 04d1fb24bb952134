package metrics_test

import (
	"testing"
	"time"

	"github.com/VTGare/Starlight/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		m := metrics.New(metrics.WithNamespace("test"))

		Convey("When decisions are recorded", func() {
			m.RecordDecision("promoted", 10*time.Millisecond)
			m.RecordDecision("promoted", 10*time.Millisecond)
			m.RecordDecision("skipped_below_threshold", time.Millisecond)

			Convey("Then they are counted per outcome", func() {
				count, err := testutil.GatherAndCount(m.Registry(), "test_starboard_decisions_total")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 2)
			})
		})

		Convey("When the leaderboard size is set", func() {
			m.SetLeaderboardEntries(7)

			Convey("Then the gauge is exported", func() {
				count, err := testutil.GatherAndCount(m.Registry(), "test_leaderboard_entries")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a nil manager", t, func() {
		var m *metrics.Manager

		Convey("Then recording is a no-op", func() {
			So(func() {
				m.RecordDecision("promoted", time.Second)
				m.RecordSweepChannel("ok")
				m.RecordLeaderboardUpdate("admin")
				m.SetLeaderboardEntries(1)
			}, ShouldNotPanic)
		})
	})
}
