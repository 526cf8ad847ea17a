package infra

import (
	"sync"
	"testing"
)

func TestMetricsCounters(t *testing.T) {
	m := &Metrics{}

	m.RecordOrderCreated()
	m.RecordOrderCreated()
	m.RecordOrderMatched()
	m.RecordOrderCanceled()
	m.RecordBalanceTopUp()
	m.RecordError()

	snap := m.Snapshot()
	if snap.OrdersCreated != 2 {
		t.Errorf("OrdersCreated = %d, want 2", snap.OrdersCreated)
	}
	if snap.OrdersMatched != 1 {
		t.Errorf("OrdersMatched = %d, want 1", snap.OrdersMatched)
	}
	if snap.OrdersCanceled != 1 {
		t.Errorf("OrdersCanceled = %d, want 1", snap.OrdersCanceled)
	}
	if snap.BalanceTopUps != 1 {
		t.Errorf("BalanceTopUps = %d, want 1", snap.BalanceTopUps)
	}
	if snap.ErrorsTotal != 1 {
		t.Errorf("ErrorsTotal = %d, want 1", snap.ErrorsTotal)
	}
}

func TestMetricsConcurrent(t *testing.T) {
	m := &Metrics{}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordOrderCreated()
		}()
	}
	wg.Wait()

	if got := m.Snapshot().OrdersCreated; got != 100 {
		t.Errorf("OrdersCreated = %d, want 100", got)
	}
}

func TestMetricsReset(t *testing.T) {
	m := &Metrics{}
	m.RecordOrderCreated()
	m.Reset()

	if got := m.Snapshot().OrdersCreated; got != 0 {
		t.Errorf("OrdersCreated after reset = %d, want 0", got)
	}
}
