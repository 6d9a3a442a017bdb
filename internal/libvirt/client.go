package libvirt

import (
	"fmt"
	"net/url"
	"time"

	"github.com/digitalocean/go-libvirt"
)

// AddrSource selects the facility the hypervisor consults when reporting a
// domain's interface addresses.
type AddrSource uint32

const (
	// AddrSourceLease reads the DHCP lease tables of libvirt networks.
	AddrSourceLease = AddrSource(libvirt.DomainInterfaceAddressesSrcLease)
	// AddrSourceAgent queries the guest agent inside the domain.
	AddrSourceAgent = AddrSource(libvirt.DomainInterfaceAddressesSrcAgent)
	// AddrSourceArp reads the host ARP/neighbor table.
	AddrSourceArp = AddrSource(libvirt.DomainInterfaceAddressesSrcArp)
)

// undefineCleanupFlags removes everything libvirt keeps for a domain besides
// its storage volumes: managed save state, snapshot and checkpoint metadata,
// and the NVRAM store.
const undefineCleanupFlags = libvirt.DomainUndefineManagedSave |
	libvirt.DomainUndefineSnapshotsMetadata |
	libvirt.DomainUndefineCheckpointsMetadata |
	libvirt.DomainUndefineNvram

// Client wraps a go-libvirt connection and provides the high-level
// operations the tool needs. It is the only type issuing raw libvirt RPCs.
type Client struct {
	libvirt *libvirt.Libvirt
	uri     string
}

// Connect establishes a connection to the libvirt daemon identified by uri.
// An empty uri connects to the local system hypervisor (qemu:///system).
// The returned Client must be closed via Close() when done.
func Connect(uri string) (*Client, error) {
	if uri == "" {
		uri = string(libvirt.QEMUSystem)
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid connection URI %q: %w", uri, err)
	}

	l, err := libvirt.ConnectToURI(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to libvirt at %s: %w", uri, err)
	}

	return &Client{libvirt: l, uri: uri}, nil
}

// Close closes the libvirt connection and releases resources.
// It is safe to call Close multiple times.
func (c *Client) Close() error {
	if c.libvirt == nil {
		return nil
	}

	if err := c.libvirt.Disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect from libvirt: %w", err)
	}
	c.libvirt = nil

	return nil
}

// URI returns the connection URI this client was opened with.
func (c *Client) URI() string {
	return c.uri
}

// ListAllDomains returns every domain known to the hypervisor, active and
// inactive, in hypervisor-reported order.
func (c *Client) ListAllDomains() ([]libvirt.Domain, error) {
	domains, _, err := c.libvirt.ConnectListAllDomains(1,
		libvirt.ConnectListDomainsActive|libvirt.ConnectListDomainsInactive)
	return domains, err
}

// DomainState returns the current power state code of the domain.
func (c *Client) DomainState(dom libvirt.Domain) (int32, error) {
	state, _, err := c.libvirt.DomainGetState(dom, 0)
	return state, err
}

// StartDomain boots a defined domain.
func (c *Client) StartDomain(dom libvirt.Domain) error {
	return c.libvirt.DomainCreate(dom)
}

// ShutdownDomain requests a graceful guest shutdown. The call returns once
// the request is delivered; the guest powers off asynchronously.
func (c *Client) ShutdownDomain(dom libvirt.Domain) error {
	return c.libvirt.DomainShutdown(dom)
}

// DestroyDomain forcefully powers off a domain, like pulling the plug.
func (c *Client) DestroyDomain(dom libvirt.Domain) error {
	return c.libvirt.DomainDestroy(dom)
}

// UndefineDomain removes the domain definition together with its managed
// save state, snapshot metadata, checkpoint metadata, and NVRAM store.
// Storage volumes are untouched; deleting those is the caller's decision.
func (c *Client) UndefineDomain(dom libvirt.Domain) error {
	return c.libvirt.DomainUndefineFlags(dom, undefineCleanupFlags)
}

// DomainXML returns the live XML description of the domain.
func (c *Client) DomainXML(dom libvirt.Domain) (string, error) {
	return c.libvirt.DomainGetXMLDesc(dom, 0)
}

// DomainAutostart reports whether the domain starts with the host.
func (c *Client) DomainAutostart(dom libvirt.Domain) (bool, error) {
	autostart, err := c.libvirt.DomainGetAutostart(dom)
	return autostart == 1, err
}

// DomainPersistent reports whether the domain has a persistent definition.
func (c *Client) DomainPersistent(dom libvirt.Domain) (bool, error) {
	persistent, err := c.libvirt.DomainIsPersistent(dom)
	return persistent == 1, err
}

// GuestTime returns the wall-clock time inside the guest. It requires a
// running guest agent; without one the hypervisor returns an error.
func (c *Client) GuestTime(dom libvirt.Domain) (time.Time, error) {
	seconds, nseconds, err := c.libvirt.DomainGetTime(dom, 0)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(seconds), int64(nseconds)), nil
}

// SetGuestTime sets the wall-clock time inside the guest via the guest
// agent.
func (c *Client) SetGuestTime(dom libvirt.Domain, t time.Time) error {
	return c.libvirt.DomainSetTime(dom, t.Unix(), uint32(t.Nanosecond()), 0)
}

// InterfaceAddresses queries one address source for the domain's network
// interfaces.
func (c *Client) InterfaceAddresses(dom libvirt.Domain, source AddrSource) ([]libvirt.DomainInterface, error) {
	return c.libvirt.DomainInterfaceAddresses(dom, uint32(source), 0)
}

// ListSnapshots returns every snapshot of the domain.
func (c *Client) ListSnapshots(dom libvirt.Domain) ([]libvirt.DomainSnapshot, error) {
	snapshots, _, err := c.libvirt.DomainListAllSnapshots(dom, 1000, 0)
	return snapshots, err
}

// SnapshotXML returns the XML description of a snapshot.
func (c *Client) SnapshotXML(snap libvirt.DomainSnapshot) (string, error) {
	return c.libvirt.DomainSnapshotGetXMLDesc(snap, 0)
}

// SnapshotIsCurrent reports whether the snapshot is the one the domain
// would roll back to by default.
func (c *Client) SnapshotIsCurrent(snap libvirt.DomainSnapshot) (bool, error) {
	current, err := c.libvirt.DomainSnapshotIsCurrent(snap, 0)
	return current == 1, err
}

// CreateSnapshot creates a snapshot of the domain from a snapshot XML
// document.
func (c *Client) CreateSnapshot(dom libvirt.Domain, xml string) error {
	_, err := c.libvirt.DomainSnapshotCreateXML(dom, xml, 0)
	return err
}

// DeleteSnapshot removes a snapshot and merges its storage back.
func (c *Client) DeleteSnapshot(snap libvirt.DomainSnapshot) error {
	return c.libvirt.DomainSnapshotDelete(snap, 0)
}

// RevertToSnapshot rolls the domain back to the given snapshot.
func (c *Client) RevertToSnapshot(snap libvirt.DomainSnapshot) error {
	return c.libvirt.DomainRevertToSnapshot(snap, 0)
}

// LookupPool finds a storage pool by name.
func (c *Client) LookupPool(name string) (libvirt.StoragePool, error) {
	return c.libvirt.StoragePoolLookupByName(name)
}

// LookupVolume finds a storage volume by name within a pool.
func (c *Client) LookupVolume(pool libvirt.StoragePool, name string) (libvirt.StorageVol, error) {
	return c.libvirt.StorageVolLookupByName(pool, name)
}

// LookupVolumeByPath finds a storage volume by its path on the host,
// whichever pool it belongs to. Volumes outside every pool are not found.
func (c *Client) LookupVolumeByPath(path string) (libvirt.StorageVol, error) {
	return c.libvirt.StorageVolLookupByPath(path)
}

// DeleteVolume removes a storage volume and its data.
func (c *Client) DeleteVolume(vol libvirt.StorageVol) error {
	return c.libvirt.StorageVolDelete(vol, libvirt.StorageVolDeleteNormal)
}
