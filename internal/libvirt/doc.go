// Package libvirt provides a client wrapper for interacting with libvirt.
//
// This package wraps github.com/digitalocean/go-libvirt and is the only
// place in the tree issuing raw libvirt RPCs. Everything above it works
// against the high-level methods of Client: domain enumeration and
// lifecycle, guest time, interface addresses, snapshots, and storage
// pool/volume lookup and deletion.
//
// Connection Management:
//
// Connections are addressed by libvirt URI and scoped to a single command
// invocation:
//
//	client, err := libvirt.Connect("qemu:///system")
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// An empty URI connects to the local system hypervisor. The Client is an
// explicitly passed value owned by the invoking command; there is no
// package-level connection state.
//
// Consumer-Side Interfaces:
//
// This package does not define interfaces. Consumers (internal/vm,
// internal/storage) define their own interfaces naming only the operations
// they need; *Client satisfies them implicitly, which keeps the operations
// mockable without a real daemon.
//
// See internal/vm/interfaces.go and internal/storage/resolve.go for the
// consumer-side interfaces.
package libvirt
