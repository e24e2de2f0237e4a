// Package resilience groups the fault tolerance helpers used by outbound
// calls: per-host circuit breakers and retry with exponential backoff.
//
//	breakers := circuitbreaker.NewRegistry(circuitbreaker.FeedFetchConfig())
//	err := retry.WithBackoff(ctx, retry.FeedFetchConfig(), func() error {
//	    _, err := breakers.For(host).Execute(fetch)
//	    return err
//	})
package resilience
