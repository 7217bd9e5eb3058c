// Package mvvmtest provides testing helpers for view-models.
//
// ManualDispatcher queues posted tasks until the test drains them, which
// makes asynchronous delivery deterministic:
//
//	d := mvvmtest.NewManualDispatcher()
//	vm := viewmodel.NewGroupVM(snapshot, d)
//	rec := mvvmtest.NewRecorder[*viewmodel.GroupVM]()
//	vm.Subscribe(rec)
//
//	vm.Update(next)
//	if rec.Count() != 1 {
//	    t.Fatal("delivery must wait for the dispatcher")
//	}
//	d.Drain()
//	mvvmtest.ExpectCalls(t, rec, 2)
package mvvmtest
