// Package scheduling holds the pure availability and plan resolution rules.
//
// Every function here works on in-memory snapshots (weekly availability, block
// exceptions, candidate coordinates) and performs no I/O, so callers fetch the
// snapshot once per request and resolve as many dates as they need against it.
// Dates are civil dates normalised to midnight UTC.
package scheduling
