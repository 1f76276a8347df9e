// Package bioactivity scores peptide fragments for likely bioactivity.
//
// Scoring is two-tiered. Tier one submits the fragment to a remote
// prediction service and rescales the returned probability to 0-100. Tier
// two is a local physicochemical heuristic that always succeeds. Any remote
// failure - timeout, non-success status, malformed body, transport error -
// silently falls through to the heuristic; the caller never sees a scoring
// error and no retry is attempted.
//
// All fragments of one analysis run are scored concurrently with a bounded
// fan-out. Fragments are independent: one fragment's timeout never delays or
// cancels its siblings, and results are written back by fragment identity so
// completion order cannot affect output.
package bioactivity
