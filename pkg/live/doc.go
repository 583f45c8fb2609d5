// Package live pushes bracket layouts to browsers over websockets.
//
// A [Hub] groups websocket clients into rooms, one per championship, and
// keeps connections alive with ping/pong. A [Poller] re-fetches the matches
// of every room that has watchers and broadcasts a BRACKET_UPDATED
// [Message] with the new layout snapshot when, and only when, the match list
// changed. The latest broadcast wins; clients replace their lines wholesale.
//
//	hub := live.NewHub()
//	go hub.Run(ctx)
//	poller := live.NewPoller(runner, hub, pipeline.Options{})
//	go poller.Run(ctx)
package live
