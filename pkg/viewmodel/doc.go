// Package viewmodel contains the concrete view-models built on pkg/mvvm.
//
// GroupVM maps entity.Group snapshots onto typed value models. It is created
// once per group id and updated in place:
//
//	loop := mvvm.NewLoop()
//	loop.Start()
//	groups := mvvm.NewRegistry(GroupKey, GroupCreator(loop), mvvm.WithKind(GroupKind))
//
//	vm, _ := groups.Apply(ctx, snapshot)
//	vm.Subscribe(mvvm.NewListener(func(g *GroupVM) {
//	    render(g.Name().Value())
//	}))
package viewmodel
