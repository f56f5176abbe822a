// Package appchains is a client for the Sequencing.com AppChains
// report-generation service.
//
// Chains run server-side as asynchronous jobs. The [Client] submits a job,
// polls until it reaches a terminal status and returns a [report.Report]:
//
//	cfg := appchains.DefaultConfig()
//	cfg.Token = os.Getenv("APPCHAINS_TOKEN")
//
//	c, err := appchains.New(cfg)
//	rep, err := c.GetReport(ctx, appchains.EndpointStartApp, "Chain88", "227680")
//	if rep.Succeeded() { ... }
//
// Several chains can be submitted together; each report is returned under
// its chain code:
//
//	reports, err := c.GetReportBatch(ctx, appchains.EndpointStartAppBatch, []appchains.Chain{
//		{AppCode: "Chain88", DataSourceID: "227680"},
//		{AppCode: "Chain9", DataSourceID: "227680"},
//	})
//
// Polling is unbounded unless [Config.Timeout] is set or ctx carries a
// deadline. Beacon lookups ([Client.PublicBeacon], [Client.SequencingBeacon])
// are plain queries and do not poll.
package appchains
