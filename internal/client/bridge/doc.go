// Package bridge implements the REST transport to the study-management
// service: the Client interface consumed by the services layer and its HTTP
// implementation.
//
// The session token travels in a request header attached by a RoundTripper;
// changing the token rebuilds the whole http.Client under a lock, so a token
// swap is never interleaved with an in-flight authenticated call. Blob
// transfers go straight to the signed URL returned by the begin-upload call
// and bypass the study API entirely.
package bridge
