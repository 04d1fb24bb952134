package pebble_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/VTGare/Starlight/store"
	"github.com/VTGare/Starlight/store/pebble"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty pebble store", t, func() {
		path := filepath.Join(t.TempDir(), "promotions")
		s, err := pebble.Open(path)
		So(err, ShouldBeNil)
		Reset(func() { s.Close(ctx) })

		Convey("When looking up an unknown message", func() {
			_, err := s.Promotion(ctx, "42")

			Convey("Then ErrPromotionNotFound is returned", func() {
				So(errors.Is(err, store.ErrPromotionNotFound), ShouldBeTrue)
			})
		})

		Convey("When a promotion is recorded", func() {
			p := &store.Promotion{
				GuildID:   "1",
				AuthorID:  "2",
				Stars:     5,
				Original:  &store.MessageMetadata{ChannelID: "3", MessageID: "42"},
				Showcase:  &store.MessageMetadata{ChannelID: "4", MessageID: "43"},
				CreatedAt: time.Unix(1700000000, 0).UTC(),
			}
			So(s.CreatePromotion(ctx, p), ShouldBeNil)

			Convey("Then it can be found by the original message ID", func() {
				found, err := s.Promotion(ctx, "42")
				So(err, ShouldBeNil)
				So(found.AuthorID, ShouldEqual, "2")
				So(found.Showcase.MessageID, ShouldEqual, "43")
				So(found.CreatedAt.Equal(p.CreatedAt), ShouldBeTrue)
			})

			Convey("Then recording it again is not an error", func() {
				So(s.CreatePromotion(ctx, p), ShouldBeNil)
			})

			Convey("Then it survives a reopen", func() {
				So(s.Close(ctx), ShouldBeNil)
				s, err = pebble.Open(path)
				So(err, ShouldBeNil)

				_, err := s.Promotion(ctx, "42")
				So(err, ShouldBeNil)
			})
		})

		Convey("When a promotion has no original", func() {
			err := s.CreatePromotion(ctx, &store.Promotion{})

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
