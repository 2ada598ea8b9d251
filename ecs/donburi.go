package ecs

import (
	"github.com/phanxgames/ebb"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// SceneEventType is the Donburi event type for ebb scene events.
// Subscribe to this in your ECS systems to react to tree setup and reloads.
var SceneEventType = events.NewEventType[ebb.SceneEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EventSink backed by a Donburi world.
// Scene events are published to SceneEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) ebb.EventSink {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event ebb.SceneEvent) {
	SceneEventType.Publish(s.world, event)
}
