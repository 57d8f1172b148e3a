// Package sink turns layout frames into output artifacts and delivers them
// to external systems.
//
// # Renderers
//
//   - [RenderJSON]: a frame sequence as a pretty-printed JSON document
//   - [RenderSVG]: one frame as an SVG picture of the tile surface, with
//     nameplates and the active tile highlighted
//
// Tiles are drawn inset by 4 units horizontally and 4/(16/9) vertically so
// neighbours keep a visible gutter.
//
// # Collector
//
// [Collector] implements organizer.Renderer by recording every frame and
// visibility change, which lets a scripted replay be rendered afterwards.
//
// # Publishers
//
// A [Publisher] delivers frames outside the process:
//
//   - [RedisPublisher] publishes each frame on a Redis pub/sub channel
//   - [MongoRecorder] stores the frame history in a MongoDB collection
//
// Both retry transient network failures with backoff.
package sink
