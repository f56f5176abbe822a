// Package report turns terminal job statuses into user-facing reports.
//
// A [Report] is an ordered list of named [Result] values. Each value is one
// of the [Value] variants, [Text] or [File]; consume them with a type switch:
//
//	for _, r := range rep.Results() {
//		switch v := r.Value.(type) {
//		case report.Text:
//			fmt.Println(r.Name, v.Data)
//		case report.File:
//			err = v.SaveTo(ctx, "/tmp/reports")
//		}
//	}
package report
