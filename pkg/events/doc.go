// Package events defines workboard's domain events and the synchronous
// dispatcher services publish them through.
//
// Services publish after a mutation has been committed:
//
//	d.Publish(ctx, events.ProjectCreated{Meta: meta, Project: ref})
//
// Subscribers such as notification fan-out and the audit trail register at
// startup:
//
//	d.Subscribe("notifications", notifier.Handle)
//	d.Subscribe("audit", auditor.Handle)
//
// Event is a closed union; switch on the concrete type to read the variant:
//
//	switch e := evt.(type) {
//	case events.TaskAssigned:
//		...
//	}
package events
