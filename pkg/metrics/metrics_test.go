package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInitMetrics 测试指标初始化与重复调用
func TestInitMetrics(t *testing.T) {
	InitMetrics()
	require.NotNil(t, HTTPRequestsTotal)
	require.NotNil(t, BooksCreatedTotal)
	require.NotNil(t, RatingsSubmittedTotal)
	require.NotNil(t, AssetCleanupFailedTotal)

	// 重复初始化不应panic（promauto重复注册会panic，靠initialized标记防护）
	InitMetrics()
}

// TestCounters 测试计数器递增
func TestCounters(t *testing.T) {
	InitMetrics()

	before := testutil.ToFloat64(BooksCreatedTotal)
	BooksCreatedTotal.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(BooksCreatedTotal))

	dup := RatingsSubmittedTotal.WithLabelValues("duplicate")
	beforeDup := testutil.ToFloat64(dup)
	dup.Inc()
	assert.Equal(t, beforeDup+1, testutil.ToFloat64(dup))
}
