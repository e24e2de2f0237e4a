package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordIngestRun(t *testing.T) {
	before := testutil.ToFloat64(FeedIngestRunsTotal.WithLabelValues("public", "success"))
	RecordIngestRun("public", true, 120*time.Millisecond)
	after := testutil.ToFloat64(FeedIngestRunsTotal.WithLabelValues("public", "success"))
	assert.Equal(t, before+1, after)

	before = testutil.ToFloat64(FeedIngestRunsTotal.WithLabelValues("user", "failure"))
	RecordIngestRun("user", false, time.Second)
	after = testutil.ToFloat64(FeedIngestRunsTotal.WithLabelValues("user", "failure"))
	assert.Equal(t, before+1, after)
}

func TestRecordIngestArticles(t *testing.T) {
	inserted := testutil.ToFloat64(FeedIngestArticlesTotal.WithLabelValues("inserted"))
	duplicated := testutil.ToFloat64(FeedIngestArticlesTotal.WithLabelValues("duplicated"))

	RecordIngestArticles(3, 2)
	RecordIngestArticles(0, 0)

	assert.Equal(t, inserted+3, testutil.ToFloat64(FeedIngestArticlesTotal.WithLabelValues("inserted")))
	assert.Equal(t, duplicated+2, testutil.ToFloat64(FeedIngestArticlesTotal.WithLabelValues("duplicated")))
}

func TestRecordIngestError(t *testing.T) {
	for _, errorType := range []string{"fetch", "parse", "validation", "storage", "internal"} {
		t.Run(errorType, func(t *testing.T) {
			before := testutil.ToFloat64(FeedIngestErrors.WithLabelValues(errorType))
			RecordIngestError(errorType)
			assert.Equal(t, before+1, testutil.ToFloat64(FeedIngestErrors.WithLabelValues(errorType)))
		})
	}
}

func TestRecordAuthzDecision(t *testing.T) {
	before := testutil.ToFloat64(AuthzDecisionsTotal.WithLabelValues("project", "deny"))
	RecordAuthzDecision("project", "deny")
	assert.Equal(t, before+1, testutil.ToFloat64(AuthzDecisionsTotal.WithLabelValues("project", "deny")))
}

func TestRecordDBQuery_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordDBQuery("insert_articles", 5*time.Millisecond)
		RecordDateParseWarning()
	})
}
