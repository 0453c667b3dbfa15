package ports

import "context"

// Port: notifies downstream recording/visualization consumers of a
// winning route. The payload is an already-serialized result document.
type RoutePublisher interface {
	PublishBestRoute(ctx context.Context, startStation string, payload []byte) error
}
