// Package fareline normalizes a heterogeneous fare-check archive into one
// canonical record model.
//
// Quick start:
//
//	f, err := fareline.New(fareline.WithRepair(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, _ := f.Normalize(ctx, archiveJSON)
//	fmt.Println(res.Audit.TotalRaw, res.Audit.TotalQuarantined)
//
// Every archive entry is classified into a schema variant, mapped to zero or
// more canonical records, or quarantined verbatim when its shape is unknown.
// A Fareline instance is safe for concurrent use.
package fareline
