package mvvm

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/vango-dev/viewmodel/pkg/mvvmtest"
)

type pair struct {
	ID    int
	Left  string
	Right int
}

// pairVM is a minimal aggregate over two fields.
type pairVM struct {
	base  BaseValueModel[*pairVM]
	left  *StringValueModel
	right *IntValueModel
}

func newPairVM(p pair, d Dispatcher, opts ...ModelOption) *pairVM {
	vm := &pairVM{
		left:  NewStringValueModel(FieldKey("pair", p.ID, "left"), p.Left),
		right: NewIntValueModel(FieldKey("pair", p.ID, "right"), p.Right),
	}
	vm.base.Init("pair", vm, d, []Field{vm.left, vm.right}, opts...)
	return vm
}

func (vm *pairVM) Update(p pair) {
	vm.base.Commit(Changed(
		vm.left.Change(p.Left),
		vm.right.Change(p.Right),
	))
}

func TestFieldKey(t *testing.T) {
	if got := FieldKey("group", int32(7), "title"); got != "group.7.title" {
		t.Errorf("expected group.7.title, got %q", got)
	}
}

func TestChangedEvaluatesEveryResult(t *testing.T) {
	calls := 0
	offer := func(r bool) bool {
		calls++
		return r
	}

	if !Changed(offer(true), offer(false), offer(true)) {
		t.Error("expected true")
	}
	if calls != 3 {
		t.Errorf("every container must be offered its value, got %d calls", calls)
	}
	if Changed() || Changed(false, false) {
		t.Error("expected false")
	}
}

func TestBaseValueModelUpdateAllFields(t *testing.T) {
	d := mvvmtest.NewManualDispatcher()
	vm := newPairVM(pair{ID: 1, Left: "a", Right: 1}, d)

	vm.Update(pair{ID: 1, Left: "b", Right: 2})

	if vm.left.Value() != "b" || vm.right.Value() != 2 {
		t.Errorf("both fields must be updated, got %q/%d", vm.left.Value(), vm.right.Value())
	}
	if d.Len() != 1 {
		t.Errorf("expected exactly one scheduled notification, got %d", d.Len())
	}
}

func TestBaseValueModelNoopUpdate(t *testing.T) {
	d := mvvmtest.NewManualDispatcher()
	vm := newPairVM(pair{ID: 1, Left: "a", Right: 1}, d)
	rec := mvvmtest.NewRecorder[*pairVM]()
	if err := vm.base.SubscribeNotify(rec, false); err != nil {
		t.Fatal(err)
	}

	vm.Update(pair{ID: 1, Left: "a", Right: 1})

	if d.Len() != 0 {
		t.Errorf("no-op update must not schedule, got %d", d.Len())
	}
	d.Drain()
	mvvmtest.ExpectCalls(t, rec, 0)
}

func TestBaseValueModelDeliveryIsDeferred(t *testing.T) {
	d := mvvmtest.NewManualDispatcher()
	vm := newPairVM(pair{ID: 1, Left: "a"}, d)
	rec := mvvmtest.NewRecorder[*pairVM]()
	if err := vm.base.Subscribe(rec); err != nil {
		t.Fatal(err)
	}
	mvvmtest.ExpectCalls(t, rec, 1)

	vm.Update(pair{ID: 1, Left: "b"})
	mvvmtest.ExpectCalls(t, rec, 1)

	d.Drain()
	mvvmtest.ExpectCalls(t, rec, 2)
	if rec.Calls()[1] != vm {
		t.Error("listeners receive the aggregate itself")
	}
}

func TestBaseValueModelSubscribeTwice(t *testing.T) {
	d := mvvmtest.NewManualDispatcher()
	vm := newPairVM(pair{ID: 1}, d)
	rec := mvvmtest.NewRecorder[*pairVM]()

	if err := vm.base.Subscribe(rec); err != nil {
		t.Fatal(err)
	}
	if err := vm.base.Subscribe(rec); err != nil {
		t.Fatal(err)
	}
	if vm.base.Listeners() != 1 {
		t.Errorf("expected 1 listener, got %d", vm.base.Listeners())
	}
	mvvmtest.ExpectCalls(t, rec, 1)

	vm.Update(pair{ID: 1, Right: 9})
	d.Drain()
	mvvmtest.ExpectCalls(t, rec, 2)
}

func TestBaseValueModelSubscribeNil(t *testing.T) {
	vm := newPairVM(pair{ID: 1}, mvvmtest.NewManualDispatcher())
	if err := vm.base.Subscribe(nil); !errors.Is(err, ErrNilListener) {
		t.Errorf("expected ErrNilListener, got %v", err)
	}
	if vm.base.Listeners() != 0 {
		t.Error("rejected subscribe must not mutate state")
	}
}

func TestBaseValueModelUnsubscribeBeforeDelivery(t *testing.T) {
	d := mvvmtest.NewManualDispatcher()
	vm := newPairVM(pair{ID: 1}, d)
	rec := mvvmtest.NewRecorder[*pairVM]()
	if err := vm.base.SubscribeNotify(rec, false); err != nil {
		t.Fatal(err)
	}

	vm.Update(pair{ID: 1, Left: "x"})
	vm.base.Unsubscribe(rec)
	vm.base.Unsubscribe(rec)
	d.Drain()

	mvvmtest.ExpectCalls(t, rec, 0)
}

func TestBaseValueModelFlushesFieldListeners(t *testing.T) {
	d := mvvmtest.NewManualDispatcher()
	vm := newPairVM(pair{ID: 1, Left: "a"}, d)
	leftRec := mvvmtest.NewRecorder[*ValueModel[string]]()
	rightRec := mvvmtest.NewRecorder[*ValueModel[int]]()
	if err := vm.left.SubscribeNotify(leftRec, false); err != nil {
		t.Fatal(err)
	}
	if err := vm.right.SubscribeNotify(rightRec, false); err != nil {
		t.Fatal(err)
	}

	vm.Update(pair{ID: 1, Left: "b"})
	mvvmtest.ExpectCalls(t, leftRec, 0)
	d.Drain()

	mvvmtest.ExpectCalls(t, leftRec, 1)
	mvvmtest.ExpectCalls(t, rightRec, 0)
}

func TestBaseValueModelFields(t *testing.T) {
	vm := newPairVM(pair{ID: 3, Left: "l", Right: 4}, mvvmtest.NewManualDispatcher())

	fields := vm.base.Fields()
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Key() != "pair.3.left" || fields[0].Any() != any("l") {
		t.Errorf("unexpected first field %s=%v", fields[0].Key(), fields[0].Any())
	}
	if fields[1].Key() != "pair.3.right" || fields[1].Any() != any(4) {
		t.Errorf("unexpected second field %s=%v", fields[1].Key(), fields[1].Any())
	}
	if vm.base.Kind() != "pair" {
		t.Errorf("expected kind pair, got %q", vm.base.Kind())
	}
}

func TestBaseValueModelMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(WithRegistry(reg), WithNamespace("test"))
	d := mvvmtest.NewManualDispatcher()
	vm := newPairVM(pair{ID: 1}, d, WithModelMetrics(metrics))
	if err := vm.base.SubscribeNotify(mvvmtest.NewRecorder[*pairVM](), false); err != nil {
		t.Fatal(err)
	}

	vm.Update(pair{ID: 1, Left: "x"})
	vm.Update(pair{ID: 1, Left: "x"})
	d.Drain()

	if got := testutil.ToFloat64(metrics.updates.WithLabelValues("pair", "changed")); got != 1 {
		t.Errorf("expected 1 changed update, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.updates.WithLabelValues("pair", "unchanged")); got != 1 {
		t.Errorf("expected 1 unchanged update, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.notifications.WithLabelValues("pair")); got != 1 {
		t.Errorf("expected 1 notification, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.deliveries.WithLabelValues("pair")); got != 1 {
		t.Errorf("expected 1 delivery, got %v", got)
	}
}
