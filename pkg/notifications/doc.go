// Package notifications turns domain events into per-user notifications.
//
// The service subscribes to the event dispatcher:
//
//	notifier := notifications.NewService(store, wsStore, realtime, logger, metrics)
//	dispatcher.Subscribe("notifications", notifier.Handle)
//
// Recipients are computed from the event and the workspace membership by
// role. The actor never receives a notification about their own action and
// no user receives the same notification twice. Each notification carries a
// typed Payload snapshot; the concrete type is selected by Notification.Type.
//
// When Redis is configured every persisted notification is also published
// on the channel "notifications:<userID>". Push failures are logged and
// counted but never fail the fan-out.
package notifications
