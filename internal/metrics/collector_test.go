package metrics

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

func TestNewCollector(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.httpRequestsTotal)
	assert.NotNil(t, collector.llmRequestsTotal)
	assert.NotNil(t, collector.routerHeadroomRejected)
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordHTTPRequest("POST", "/v1/chat/completions", 200, 100*time.Millisecond, 1024, 2048)

	count := testutil.CollectAndCount(collector.httpRequestsTotal)
	assert.Greater(t, count, 0)
}

func TestCollector_RecordLLMRequest(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordLLMRequest("cerebras", "llama3.1-8b", "success", 500*time.Millisecond, 100, 50)

	assert.Greater(t, testutil.CollectAndCount(collector.llmRequestsTotal), 0)
	assert.Greater(t, testutil.CollectAndCount(collector.llmTokensUsed), 0)
}

func TestCollector_RecordCandidateCount(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())
	collector.RecordCandidateCount(2)
	assert.Equal(t, uint64(1), testutil.CollectAndCount(collector.routerCandidatesTotal))
}

func TestCollector_RecordFailoverAndHeadroomRejected(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordFailover("cerebras", "upstream_rate_limit")
	collector.RecordHeadroomRejected("mistral", "mistral-small-latest")
	collector.RecordNoCapableProvider()

	assert.Greater(t, testutil.CollectAndCount(collector.routerFailoversTotal), 0)
	assert.Greater(t, testutil.CollectAndCount(collector.routerHeadroomRejected), 0)
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.routerNoCapableProvider))
}

func TestCollector_RecordCacheOperation(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordCacheHit("model_list")
	collector.RecordCacheMiss("model_list")

	assert.Greater(t, testutil.CollectAndCount(collector.cacheHits), 0)
	assert.Greater(t, testutil.CollectAndCount(collector.cacheMisses), 0)
}

func TestCollector_RecordStoreQuery(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())
	collector.RecordStoreQuery("aggregate", 20*time.Millisecond)
	assert.Greater(t, testutil.CollectAndCount(collector.storeQueryDuration), 0)
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			collector.RecordHTTPRequest("GET", "/health", 200, 10*time.Millisecond, 0, 0)
			collector.RecordLLMRequest("cerebras", "llama3.1-8b", "success", 500*time.Millisecond, 100, 50)
			collector.RecordCacheHit("model_list")
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	assert.Greater(t, testutil.CollectAndCount(collector.httpRequestsTotal), 0)
	assert.Greater(t, testutil.CollectAndCount(collector.llmRequestsTotal), 0)
}
