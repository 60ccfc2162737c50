// Package maintenance tidies the enquiry store outside the import and
// duplicate screens.
//
// Clean deletes records with no first name, email or phone, blanks email
// addresses that are not well formed and collapses records sharing an email
// onto the oldest one. Integrity reports the same problems without changing
// anything. Optimize refreshes planner statistics. Clean and Optimize take a
// best-effort snapshot first.
package maintenance
