// Package appchainstest runs an in-process AppChains service for tests.
//
// The fake accepts single and batch submissions, answers status queries,
// serves report files and beacon lookups. Every submitted job stays
// "Running" for a configurable number of status queries and then completes
// with the result registered for its app code:
//
//	srv := appchainstest.NewServer(
//		appchainstest.WithPollsUntilDone(2),
//		appchainstest.WithResult("Chain9", appchainstest.Result{
//			Succeeded: true,
//			Props:     []job.Prop{{Type: "PlainText", Name: "RiskDescription", Value: "low"}},
//		}),
//	)
//	defer srv.Close()
//
//	c, err := appchains.New(srv.Config())
package appchainstest
