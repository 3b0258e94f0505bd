/*
Package session implements viewer sessions.

A viewer session remembers which graph node and port a client is looking at and the
table it last extracted, so HTTP and MCP clients can refresh, scroll to a row or
place markers from cells without resending the data. Sessions live in a
ports.SessionStore (memory or Redis); access to one session is serialized locally
and, with a ports.DistributedLocker, across replicas.
*/
package session
