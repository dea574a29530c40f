// Package directory queries the IBEW local union directory API.
//
// The directory exposes a single DataIO endpoint switched by an "action" query
// parameter. Client.Locals lists the locals chartered in each requested state and
// de-duplicates them by local number. Client.Details then fetches trade
// classifications and county coverage for every local on a bounded worker pool;
// a failed detail call degrades that one record instead of failing the run.
package directory
