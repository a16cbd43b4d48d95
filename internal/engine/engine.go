package engine

import (
	"gator-gram/internal/database"
	"gator-gram/internal/engine/actors"
	"gator-gram/internal/upload"
	"gator-gram/internal/utils"
	"gator-gram/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine coordinates communication between actors
type Engine struct {
	userActor *actor.PID
	postActor *actor.PID
}

func NewEngine(system *actor.ActorSystem, store database.Store, uploader upload.Uploader, hub *websocket.Hub, metrics *utils.MetricsCollector) *Engine {
	context := system.Root

	// Spawn user actor
	userProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewUserActor(store, metrics)
	})
	userPID := context.Spawn(userProps)

	// Spawn post actor
	postProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewPostActor(store, uploader, hub, metrics)
	})
	postPID := context.Spawn(postProps)

	return &Engine{
		userActor: userPID,
		postActor: postPID,
	}
}

// GetUserActor returns the PID of the user actor
func (e *Engine) GetUserActor() *actor.PID {
	return e.userActor
}

// GetPostActor returns the PID of the post actor
func (e *Engine) GetPostActor() *actor.PID {
	return e.postActor
}
