// Package transport defines the surface for fanning a stream out to remote
// peers. Concrete transports live in subpackages.
package transport

import "net"

type Server interface {
	// Runs the accept loop for this server, returns when the server is shut down.
	Serve() error
	// Signal the accept loop to shut down
	Shutdown()
	// Block until the server shuts down
	AwaitShutdown()
	// The address the server is bound to
	Addr() net.Addr
}
