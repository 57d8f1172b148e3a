package sink

import (
	"context"
	"time"

	"github.com/matzehuels/tileorg/pkg/layout"
)

// Publisher delivers the frames of a replay to an external system.
type Publisher interface {
	Publish(ctx context.Context, scenario string, frames []layout.Frame) error
	Close(ctx context.Context) error
}

// Retry settings shared by the network publishers.
const (
	publishAttempts = 3
	publishBackoff  = 200 * time.Millisecond
)
