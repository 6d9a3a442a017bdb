package vm

import (
	"time"

	"github.com/digitalocean/go-libvirt"

	vmslibvirt "github.com/virtadm/vms/internal/libvirt"
	"github.com/virtadm/vms/internal/storage"
)

// LibvirtClient defines the hypervisor operations the VM workflows need.
//
// In production this is satisfied by *libvirt.Client (internal/libvirt).
// In tests it is satisfied by mock implementations.
type LibvirtClient interface {
	// ListAllDomains returns every domain, active and inactive, in
	// hypervisor-reported order.
	ListAllDomains() ([]libvirt.Domain, error)

	// DomainState returns the domain's current power state code.
	DomainState(dom libvirt.Domain) (int32, error)

	// StartDomain boots a defined domain.
	StartDomain(dom libvirt.Domain) error

	// ShutdownDomain requests a graceful guest shutdown.
	ShutdownDomain(dom libvirt.Domain) error

	// DestroyDomain forcefully powers off a domain.
	DestroyDomain(dom libvirt.Domain) error

	// UndefineDomain removes the domain definition and its managed-save,
	// snapshot metadata, checkpoint metadata, and NVRAM state.
	UndefineDomain(dom libvirt.Domain) error

	// DomainXML returns the domain's XML description.
	DomainXML(dom libvirt.Domain) (string, error)

	// DomainAutostart reports whether the domain starts with the host.
	DomainAutostart(dom libvirt.Domain) (bool, error)

	// DomainPersistent reports whether the domain definition is persistent.
	DomainPersistent(dom libvirt.Domain) (bool, error)

	// GuestTime returns the guest's wall-clock time via the guest agent.
	GuestTime(dom libvirt.Domain) (time.Time, error)

	// SetGuestTime sets the guest's wall-clock time via the guest agent.
	SetGuestTime(dom libvirt.Domain, t time.Time) error

	// InterfaceAddresses queries one source for the domain's interface
	// addresses.
	InterfaceAddresses(dom libvirt.Domain, source vmslibvirt.AddrSource) ([]libvirt.DomainInterface, error)

	// ListSnapshots returns every snapshot of the domain.
	ListSnapshots(dom libvirt.Domain) ([]libvirt.DomainSnapshot, error)

	// SnapshotXML returns a snapshot's XML description.
	SnapshotXML(snap libvirt.DomainSnapshot) (string, error)

	// SnapshotIsCurrent reports whether the snapshot is the domain's
	// current one.
	SnapshotIsCurrent(snap libvirt.DomainSnapshot) (bool, error)

	// CreateSnapshot creates a snapshot from a snapshot XML document.
	CreateSnapshot(dom libvirt.Domain, xml string) error

	// DeleteSnapshot removes a snapshot.
	DeleteSnapshot(snap libvirt.DomainSnapshot) error

	// RevertToSnapshot rolls the domain back to a snapshot.
	RevertToSnapshot(snap libvirt.DomainSnapshot) error
}

// StorageClient defines the storage operations the delete workflow needs:
// the resolution lookups plus volume deletion.
//
// In production this is satisfied by *libvirt.Client (internal/libvirt).
type StorageClient interface {
	storage.VolumeLookup

	// DeleteVolume removes a storage volume and its data.
	DeleteVolume(vol libvirt.StorageVol) error
}

// Failure ties a per-domain error to the domain it happened on. Command
// handlers report failures and keep iterating; a Failure never aborts a
// batch.
type Failure struct {
	Domain string
	Err    error
}
