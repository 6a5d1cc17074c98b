// Package uploads persists the queue of files awaiting transport to the
// study service. Records survive process restarts; the remote id column is
// the durable marker separating untransmitted records from records awaiting
// validation.
package uploads
