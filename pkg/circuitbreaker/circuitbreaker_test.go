package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errCodec = errors.New("转码失败")

func newTestBreaker() *CircuitBreaker {
	return NewCircuitBreaker("image-codec", Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     50 * time.Millisecond,
		ReadyToTrip: func(c Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
	})
}

// TestCircuitBreaker_ClosedState 测试关闭状态下请求正常通过
func TestCircuitBreaker_ClosedState(t *testing.T) {
	cb := newTestBreaker()

	for i := 0; i < 5; i++ {
		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("关闭状态下请求应该通过: %v", err)
		}
	}

	if cb.State() != StateClosed {
		t.Errorf("期望CLOSED，实际%s", cb.State())
	}
	if cb.Counts().TotalSuccesses != 5 {
		t.Errorf("期望成功5次，实际%d", cb.Counts().TotalSuccesses)
	}
}

// TestCircuitBreaker_TripsOpen 测试连续失败触发熔断
func TestCircuitBreaker_TripsOpen(t *testing.T) {
	cb := newTestBreaker()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errCodec })
	}

	if cb.State() != StateOpen {
		t.Fatalf("连续失败3次后期望OPEN，实际%s", cb.State())
	}

	// 熔断打开后快速失败，不执行请求
	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrOpenState) {
		t.Errorf("期望ErrOpenState，实际%v", err)
	}
	if called {
		t.Error("熔断打开后不应执行请求")
	}
}

// TestCircuitBreaker_HalfOpenRecovery 测试半开状态探测成功后恢复
func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := newTestBreaker()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errCodec })
	}

	// 等待熔断超时，进入半开
	time.Sleep(60 * time.Millisecond)
	if cb.State() != StateHalfOpen {
		t.Fatalf("超时后期望HALF_OPEN，实际%s", cb.State())
	}

	// 探测成功，恢复为关闭状态
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("半开状态探测请求应该通过: %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("探测成功后期望CLOSED，实际%s", cb.State())
	}
}

// TestCircuitBreaker_HalfOpenToOpen 测试半开状态探测失败立即回到打开
func TestCircuitBreaker_HalfOpenToOpen(t *testing.T) {
	cb := newTestBreaker()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errCodec })
	}

	time.Sleep(60 * time.Millisecond)

	_ = cb.Execute(func() error { return errCodec })
	if cb.State() != StateOpen {
		t.Errorf("探测失败后期望OPEN，实际%s", cb.State())
	}
}

// TestCircuitBreaker_StateChangeCallback 测试状态变化回调
func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	cb := newTestBreaker()

	var transitions []string
	cb.SetStateChangeCallback(func(name string, from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errCodec })
	}

	if len(transitions) != 1 || transitions[0] != "CLOSED->OPEN" {
		t.Errorf("期望一次CLOSED->OPEN转换，实际%v", transitions)
	}
}
