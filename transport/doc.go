// Package transport performs the HTTP requests the entity store issues.
//
// Transport is the seam the store depends on; Func adapts a plain function
// for tests. HTTP is the default implementation over net/http and adds the
// concerns a client cache needs from its network layer:
//
//   - BaseURL resolution for relative hrefs
//   - a per-request Timeout that covers reading the body
//   - a concurrency limit (MaxConcurrent, MaxWait) that rejects with ErrBusy
//   - a default User-Agent
//
// # Usage
//
//	t, err := transport.NewHTTP(transport.HTTPConfig{
//		BaseURL:       "https://api.example.com/",
//		Timeout:       10 * time.Second,
//		MaxConcurrent: 16,
//	})
//
// Responses must be closed by the caller. Non-2xx statuses are not errors at
// this layer; callers inspect StatusCode.
package transport
