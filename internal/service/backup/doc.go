// Package backup takes full-store snapshots of the enquiry table.
//
// Automatic snapshots go through a throttle: imports, duplicate removals and
// other bulk operations always snapshot, while single-record triggers are
// rate limited against the newest existing snapshot. Each snapshot is stored
// in the backup table, copied to the configured archive and the table is then
// pruned to the retention limit. Archive and prune failures are logged only.
package backup
