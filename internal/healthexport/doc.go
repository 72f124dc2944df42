// Package healthexport streams step-count records out of an Apple Health
// export.
//
// The export is read token by token with encoding/xml; no element tree is
// built. For each <Record> whose type matches the configured identifier the
// reader keeps that element's attributes, skips its children, converts the
// attributes into a Record and then drops them. Records with missing or
// unparsable attributes are skipped and counted, never returned.
//
// Open accepts a plain export.xml, a gzip-compressed copy, or the export.zip
// archive produced by the Health app:
//
//	r, err := healthexport.Open("export.zip", healthexport.WithMetrics(m))
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	for {
//	    rec, err := r.Next()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    use(rec)
//	}
package healthexport
