// Package job normalizes AppChains job status payloads.
//
// Every poll response, whether it answers a submission, a single status
// query or a batch status query, carries one or more status objects of the
// form
//
//	{
//		"Status": {"IdJob": 42, "Status": "Completed", "CompletedSuccesfully": true},
//		"ResultProps": [{"Type": "PlainText", "Name": "RiskDescription", "Value": "..."}]
//	}
//
// [Decode] turns one such object into a [Raw] value. A Raw is built fresh
// from each response and never mutated afterwards.
package job
