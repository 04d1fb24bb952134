package middlewares

import (
	"context"
	"testing"

	"github.com/VTGare/Starlight/ctxzap"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func commandEvent(name string) *discord.InteractionEvent {
	return &discord.InteractionEvent{
		Data:      &discord.CommandInteraction{Name: name},
		GuildID:   1,
		ChannelID: 2,
		User:      &discord.User{ID: 3},
	}
}

func TestCommandLog(t *testing.T) {
	Convey("Given a command log middleware", t, func() {
		core, logs := observer.New(zapcore.DebugLevel)
		logger := zap.New(core).Sugar()

		var scoped bool
		next := cmdroute.InteractionHandlerFunc(func(ctx context.Context, ie *discord.InteractionEvent) *api.InteractionResponse {
			ctxzap.Extract(ctx).Info("inside")
			scoped = true
			return &api.InteractionResponse{Type: api.MessageInteractionWithSource}
		})

		handler := CommandLog(logger)(next)
		resp := handler.HandleInteraction(context.Background(), commandEvent("leaderboard"))

		Convey("The command is passed through", func() {
			So(scoped, ShouldBeTrue)
			So(resp, ShouldNotBeNil)
		})

		Convey("The handler logs with the command's fields", func() {
			inside := logs.FilterMessage("inside").All()
			So(inside, ShouldHaveLength, 1)
			So(inside[0].ContextMap()["command"], ShouldEqual, "leaderboard")
			So(logs.FilterMessage("executing a command").Len(), ShouldEqual, 1)
		})
	})
}

func TestRecover(t *testing.T) {
	Convey("Given a panicking command", t, func() {
		core, logs := observer.New(zapcore.DebugLevel)
		logger := zap.New(core).Sugar()

		next := cmdroute.InteractionHandlerFunc(func(ctx context.Context, ie *discord.InteractionEvent) *api.InteractionResponse {
			panic("boom")
		})

		resp := Recover(logger)(next).HandleInteraction(context.Background(), commandEvent("ping"))

		Convey("An ephemeral error response is returned", func() {
			So(resp, ShouldNotBeNil)
			So(resp.Data, ShouldNotBeNil)
			So(resp.Data.Flags, ShouldEqual, discord.EphemeralMessage)
		})

		Convey("The panic is logged", func() {
			So(logs.FilterMessage("command panicked").Len(), ShouldEqual, 1)
		})
	})
}
