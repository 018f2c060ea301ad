package dreadroot

import (
	"context"
	"fmt"

	"better-dreadroot/internal/options"
	"better-dreadroot/internal/world"
	"better-dreadroot/logging"
	"better-dreadroot/logging/mutation"
)

// Diagnostics writes tagged, human readable lines about what the pipeline
// did. Whether logging is on is read from the option store on every call,
// independent of the toggle cache.
type Diagnostics struct {
	store  options.Store
	pub    logging.Publisher
	prefix string
}

func NewDiagnostics(store options.Store, pub logging.Publisher, prefix string) Diagnostics {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	if prefix == "" {
		prefix = logging.DefaultPrefix
	}
	return Diagnostics{store: store, pub: pub, prefix: prefix}
}

func (d Diagnostics) Enabled() bool {
	return options.Bool(d.store, options.KeyLogging)
}

func (d Diagnostics) Info(ctx context.Context, eventType logging.EventType, ref world.Ref, payload any, format string, args ...any) {
	if !d.Enabled() {
		return
	}
	message := d.prefix + " " + fmt.Sprintf(format, args...)
	mutation.Publish(ctx, d.pub, eventType, actorRef(ref), message, payload)
}

func actorRef(ref world.Ref) logging.EntityRef {
	if ref.IsAbsent() {
		return logging.EntityRef{Kind: logging.EntityKindUnknown}
	}
	return logging.EntityRef{ID: string(ref.ID()), Kind: logging.EntityKindEntity}
}
