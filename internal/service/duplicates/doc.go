// Package duplicates finds enquiries that describe the same customer and
// removes the ones an admin approves.
//
// A scan reads every enquiry newest-first and runs the grouping strategies in
// order. Email matching runs first and claims its members; name plus phone
// matching only sees what is left. In every group the first (newest) record is
// kept and the rest are recommended for removal.
//
// Scans are recomputed from the store on every call. Nothing guards against a
// recommendation going stale between the scan and the removal request.
package duplicates
