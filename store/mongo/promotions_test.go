package mongo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/VTGare/Starlight/store"
	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestHandlePromotionError(t *testing.T) {
	Convey("Given errors from a promotion lookup", t, func() {
		Convey("No documents means the promotion was never recorded", func() {
			So(handlePromotionError(mongo.ErrNoDocuments), ShouldEqual, store.ErrPromotionNotFound)
		})

		Convey("A wrapped no documents error is recognised too", func() {
			err := fmt.Errorf("find one: %w", mongo.ErrNoDocuments)
			So(handlePromotionError(err), ShouldEqual, store.ErrPromotionNotFound)
		})

		Convey("Anything else is internal", func() {
			So(handlePromotionError(errors.New("connection reset")), ShouldEqual, store.ErrInternal)
		})
	})
}

func TestHandleInsertError(t *testing.T) {
	Convey("Given errors from inserting a promotion", t, func() {
		cases := []struct {
			name string
			err  error
			want error
		}{
			{"no error", nil, nil},
			{
				"a duplicate key write error",
				mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}}},
				nil,
			},
			{"a duplicate key command error", mongo.CommandError{Code: 11000}, nil},
			{
				"another write error",
				mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 121, Message: "Document failed validation"}}},
				store.ErrInternal,
			},
			{"a network error", errors.New("connection reset"), store.ErrInternal},
		}

		for _, c := range cases {
			c := c
			Convey(fmt.Sprintf("With %v", c.name), func() {
				So(handleInsertError(c.err), ShouldEqual, c.want)
			})
		}
	})
}
