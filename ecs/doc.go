// Package ecs provides ECS adapters for ebb's scene lifecycle events.
//
// The primary adapter is [NewDonburiStore], which bridges scene events
// (setup, loaded, saved, quit) into a [Donburi] world as typed events.
// Subscribe to [SceneEventType] in your ECS systems to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
