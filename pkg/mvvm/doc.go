// Package mvvm provides the observable view-model core.
//
// A view-model turns immutable domain snapshots into long-lived, mutable
// objects that UI bindings can subscribe to. Each mutable field lives in a
// ValueModel that performs change detection; an aggregate composes several
// value models, ORs their change results and schedules exactly one
// notification per effective update on a Dispatcher.
//
// # Core Types
//
// ValueModel[T] is a keyed value container with equality-based mutation:
//
//	title := NewStringValueModel("group.1.title", "A")
//	title.Change("A") // false, nothing stored
//	title.Change("B") // true
//	title.Value()     // "B"
//
// BaseValueModel[VM] is the aggregate machinery a concrete view-model
// embeds as a field. It owns the listener set and the dispatcher:
//
//	func (g *GroupVM) Update(s *entity.Group) {
//	    g.base.Commit(mvvm.Changed(
//	        g.name.Change(s.Title),
//	        g.about.Change(s.About),
//	    ))
//	}
//
// # Delivery
//
// Change notifications are never run on the goroutine that called Update.
// They are posted to a Dispatcher, normally a Loop whose single consumer
// goroutine plays the role of the UI thread:
//
//	loop := NewLoop()
//	loop.Start()
//	defer loop.Close()
//
// The initial notification performed by Subscribe is the only synchronous
// listener call.
//
// # Thread Safety
//
// Change and Value may be called from any goroutine. Subscribe and
// Unsubscribe are safe from any goroutine but are conventionally called on
// the dispatcher's goroutine; an Unsubscribe performed there is final for
// every delivery that has not started yet.
package mvvm
