// Package sheets implements the queue store on a spreadsheet worksheet whose
// rows are the job queue. The worksheet is shared mutable state with no
// transactions, so claims are compare-and-set approximations: a read, a write
// stamped with the runner token, and a verification re-read.
package sheets
