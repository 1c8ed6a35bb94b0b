package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetOrCreateIsLazyAndStable(t *testing.T) {
	store := NewInMemoryStore()

	st := store.GetOrCreate("user-1")
	assert.Equal(t, FlowNone, st.Flow())
	assert.False(t, st.Active())

	st.Begin(FlowTracking, "taxID")
	again := store.GetOrCreate("user-1")
	assert.Same(t, st, again)
	assert.Equal(t, FlowTracking, again.Flow())
	assert.Equal(t, 1, store.Len())
}

func TestClearRemovesState(t *testing.T) {
	store := NewInMemoryStore()
	st := store.GetOrCreate("user-1")
	st.Begin(FlowSupplier, "companyName")

	store.Clear("user-1")

	fresh := store.GetOrCreate("user-1")
	assert.Equal(t, FlowNone, fresh.Flow())
}

func TestSweepEvictsIdleStatesOnly(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	store := NewInMemoryStore(func(o *Options) {
		o.Now = func() time.Time { return now }
	})

	stale := store.GetOrCreate("stale")
	stale.Begin(FlowTracking, "taxID")

	now = base.Add(14 * time.Minute)
	active := store.GetOrCreate("active")
	active.Begin(FlowRecruiting, "menu")

	now = base.Add(16 * time.Minute)
	evicted := store.Sweep(now)

	assert.Equal(t, 1, evicted)
	assert.Equal(t, FlowNone, store.GetOrCreate("stale").Flow())
	assert.Equal(t, FlowRecruiting, store.GetOrCreate("active").Flow())
}

func TestFieldsPreserveCollectionOrder(t *testing.T) {
	store := NewInMemoryStore()
	st := store.GetOrCreate("user-1")
	st.Begin(FlowSupplier, "companyName")
	st.Set("companyName", "ACME")
	st.Set("taxID", "12345678000195")
	st.Set("companyName", "ACME Ltda") // overwrite keeps position

	fields := st.Fields()
	assert.Len(t, fields, 2)
	assert.Equal(t, "companyName", fields[0].Key)
	assert.Equal(t, "ACME Ltda", fields[0].Value)
	assert.Equal(t, "taxID", fields[1].Key)
}

func TestSweeperConcurrentWithFlowMutation(t *testing.T) {
	store := NewInMemoryStore()
	st := store.GetOrCreate("user-1")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			store.Sweep(time.Now())
			store.FlowCounts()
		}
	}()

	for i := 0; i < 1000; i++ {
		st.Touch(time.Now())
		st.Begin(FlowTracking, "taxID")
		st.Advance("docNo")
	}
	<-done

	assert.Equal(t, FlowTracking, st.Flow())
}

func TestFlowCounts(t *testing.T) {
	store := NewInMemoryStore()
	store.GetOrCreate("a").Begin(FlowTracking, "taxID")
	store.GetOrCreate("b").Begin(FlowTracking, "docNo")
	store.GetOrCreate("c")

	counts := store.FlowCounts()
	assert.Equal(t, 2, counts[FlowTracking])
	assert.Equal(t, 1, counts[FlowNone])
}
