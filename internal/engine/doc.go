// Package engine answers point-in-time weather questions. Past and present
// dates resolve to an exact archived observation; future dates resolve to a
// climatology estimate built from the same calendar slot in prior years.
//
// Provider failures never escape a single year or marker: they are logged
// and the affected unit reports no data.
package engine
