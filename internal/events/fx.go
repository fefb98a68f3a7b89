package events

import "go.uber.org/fx"

var Module = fx.Module("events.outbox",
	fx.Provide(NewOutbox),
)

// RelayModule runs the order event relay inside the long-lived server process.
var RelayModule = fx.Module("events.relay",
	fx.Provide(NewRelay),
	fx.Invoke(RunRelay),
)
