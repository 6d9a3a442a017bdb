package vm

import (
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/digitalocean/go-libvirt"

	vmslibvirt "github.com/virtadm/vms/internal/libvirt"
	"github.com/virtadm/vms/internal/match"
)

type setGuestTimeCall struct {
	Domain string
	Time   time.Time
}

type interfaceAddressesCall struct {
	Domain string
	Source vmslibvirt.AddrSource
}

type createSnapshotCall struct {
	Domain string
	XML    string
}

// mockLibvirtClient is a mock implementation of the LibvirtClient interface for testing.
type mockLibvirtClient struct {
	mu sync.Mutex

	// Configurable behavior
	listAllDomainsFunc     func() ([]libvirt.Domain, error)
	domainStateFunc        func(dom libvirt.Domain) (int32, error)
	startDomainFunc        func(dom libvirt.Domain) error
	shutdownDomainFunc     func(dom libvirt.Domain) error
	destroyDomainFunc      func(dom libvirt.Domain) error
	undefineDomainFunc     func(dom libvirt.Domain) error
	domainXMLFunc          func(dom libvirt.Domain) (string, error)
	domainAutostartFunc    func(dom libvirt.Domain) (bool, error)
	domainPersistentFunc   func(dom libvirt.Domain) (bool, error)
	guestTimeFunc          func(dom libvirt.Domain) (time.Time, error)
	setGuestTimeFunc       func(dom libvirt.Domain, t time.Time) error
	interfaceAddressesFunc func(dom libvirt.Domain, source vmslibvirt.AddrSource) ([]libvirt.DomainInterface, error)
	listSnapshotsFunc      func(dom libvirt.Domain) ([]libvirt.DomainSnapshot, error)
	snapshotXMLFunc        func(snap libvirt.DomainSnapshot) (string, error)
	snapshotIsCurrentFunc  func(snap libvirt.DomainSnapshot) (bool, error)
	createSnapshotFunc     func(dom libvirt.Domain, xml string) error
	deleteSnapshotFunc     func(snap libvirt.DomainSnapshot) error
	revertToSnapshotFunc   func(snap libvirt.DomainSnapshot) error

	// Call tracking
	listAllDomainsCalls     int
	domainStateCalls        []string
	startDomainCalls        []string
	shutdownDomainCalls     []string
	destroyDomainCalls      []string
	undefineDomainCalls     []string
	domainXMLCalls          []string
	domainAutostartCalls    []string
	domainPersistentCalls   []string
	guestTimeCalls          []string
	setGuestTimeCalls       []setGuestTimeCall
	interfaceAddressesCalls []interfaceAddressesCall
	listSnapshotsCalls      []string
	snapshotXMLCalls        []string
	snapshotIsCurrentCalls  []string
	createSnapshotCalls     []createSnapshotCall
	deleteSnapshotCalls     []string // snapshot names
	revertToSnapshotCalls   []string // snapshot names
}

// newMockLibvirtClient creates a new mock libvirt client with default behavior.
func newMockLibvirtClient() *mockLibvirtClient {
	m := &mockLibvirtClient{}

	// Default: no domains defined
	m.listAllDomainsFunc = func() ([]libvirt.Domain, error) {
		return []libvirt.Domain{}, nil
	}

	// Default: domain is running
	m.domainStateFunc = func(dom libvirt.Domain) (int32, error) {
		return StateRunning, nil
	}

	// Default: lifecycle operations succeed
	m.startDomainFunc = func(dom libvirt.Domain) error { return nil }
	m.shutdownDomainFunc = func(dom libvirt.Domain) error { return nil }
	m.destroyDomainFunc = func(dom libvirt.Domain) error { return nil }
	m.undefineDomainFunc = func(dom libvirt.Domain) error { return nil }

	// Default: definition with no disks
	m.domainXMLFunc = func(dom libvirt.Domain) (string, error) {
		return "<domain><name>" + dom.Name + "</name><devices></devices></domain>", nil
	}

	// Default: not autostarted, persistent
	m.domainAutostartFunc = func(dom libvirt.Domain) (bool, error) { return false, nil }
	m.domainPersistentFunc = func(dom libvirt.Domain) (bool, error) { return true, nil }

	// Default: no guest agent, so no guest time
	m.guestTimeFunc = func(dom libvirt.Domain) (time.Time, error) {
		return time.Time{}, fmt.Errorf("guest agent is not connected")
	}

	// Default: setting the guest time succeeds
	m.setGuestTimeFunc = func(dom libvirt.Domain, t time.Time) error { return nil }

	// Default: no addresses from any source
	m.interfaceAddressesFunc = func(dom libvirt.Domain, source vmslibvirt.AddrSource) ([]libvirt.DomainInterface, error) {
		return []libvirt.DomainInterface{}, nil
	}

	// Default: no snapshots
	m.listSnapshotsFunc = func(dom libvirt.Domain) ([]libvirt.DomainSnapshot, error) {
		return []libvirt.DomainSnapshot{}, nil
	}

	// Default: minimal snapshot description
	m.snapshotXMLFunc = func(snap libvirt.DomainSnapshot) (string, error) {
		return "<domainsnapshot><name>" + snap.Name + "</name></domainsnapshot>", nil
	}

	// Default: not the current snapshot
	m.snapshotIsCurrentFunc = func(snap libvirt.DomainSnapshot) (bool, error) { return false, nil }

	// Default: snapshot operations succeed
	m.createSnapshotFunc = func(dom libvirt.Domain, xml string) error { return nil }
	m.deleteSnapshotFunc = func(snap libvirt.DomainSnapshot) error { return nil }
	m.revertToSnapshotFunc = func(snap libvirt.DomainSnapshot) error { return nil }

	return m
}

func (m *mockLibvirtClient) ListAllDomains() ([]libvirt.Domain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listAllDomainsCalls++
	return m.listAllDomainsFunc()
}

func (m *mockLibvirtClient) DomainState(dom libvirt.Domain) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domainStateCalls = append(m.domainStateCalls, dom.Name)
	return m.domainStateFunc(dom)
}

func (m *mockLibvirtClient) StartDomain(dom libvirt.Domain) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startDomainCalls = append(m.startDomainCalls, dom.Name)
	return m.startDomainFunc(dom)
}

func (m *mockLibvirtClient) ShutdownDomain(dom libvirt.Domain) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownDomainCalls = append(m.shutdownDomainCalls, dom.Name)
	return m.shutdownDomainFunc(dom)
}

func (m *mockLibvirtClient) DestroyDomain(dom libvirt.Domain) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyDomainCalls = append(m.destroyDomainCalls, dom.Name)
	return m.destroyDomainFunc(dom)
}

func (m *mockLibvirtClient) UndefineDomain(dom libvirt.Domain) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undefineDomainCalls = append(m.undefineDomainCalls, dom.Name)
	return m.undefineDomainFunc(dom)
}

func (m *mockLibvirtClient) DomainXML(dom libvirt.Domain) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domainXMLCalls = append(m.domainXMLCalls, dom.Name)
	return m.domainXMLFunc(dom)
}

func (m *mockLibvirtClient) DomainAutostart(dom libvirt.Domain) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domainAutostartCalls = append(m.domainAutostartCalls, dom.Name)
	return m.domainAutostartFunc(dom)
}

func (m *mockLibvirtClient) DomainPersistent(dom libvirt.Domain) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.domainPersistentCalls = append(m.domainPersistentCalls, dom.Name)
	return m.domainPersistentFunc(dom)
}

func (m *mockLibvirtClient) GuestTime(dom libvirt.Domain) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guestTimeCalls = append(m.guestTimeCalls, dom.Name)
	return m.guestTimeFunc(dom)
}

func (m *mockLibvirtClient) SetGuestTime(dom libvirt.Domain, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setGuestTimeCalls = append(m.setGuestTimeCalls, setGuestTimeCall{Domain: dom.Name, Time: t})
	return m.setGuestTimeFunc(dom, t)
}

func (m *mockLibvirtClient) InterfaceAddresses(dom libvirt.Domain, source vmslibvirt.AddrSource) ([]libvirt.DomainInterface, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interfaceAddressesCalls = append(m.interfaceAddressesCalls, interfaceAddressesCall{Domain: dom.Name, Source: source})
	return m.interfaceAddressesFunc(dom, source)
}

func (m *mockLibvirtClient) ListSnapshots(dom libvirt.Domain) ([]libvirt.DomainSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listSnapshotsCalls = append(m.listSnapshotsCalls, dom.Name)
	return m.listSnapshotsFunc(dom)
}

func (m *mockLibvirtClient) SnapshotXML(snap libvirt.DomainSnapshot) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshotXMLCalls = append(m.snapshotXMLCalls, snap.Name)
	return m.snapshotXMLFunc(snap)
}

func (m *mockLibvirtClient) SnapshotIsCurrent(snap libvirt.DomainSnapshot) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshotIsCurrentCalls = append(m.snapshotIsCurrentCalls, snap.Name)
	return m.snapshotIsCurrentFunc(snap)
}

func (m *mockLibvirtClient) CreateSnapshot(dom libvirt.Domain, xml string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createSnapshotCalls = append(m.createSnapshotCalls, createSnapshotCall{Domain: dom.Name, XML: xml})
	return m.createSnapshotFunc(dom, xml)
}

func (m *mockLibvirtClient) DeleteSnapshot(snap libvirt.DomainSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteSnapshotCalls = append(m.deleteSnapshotCalls, snap.Name)
	return m.deleteSnapshotFunc(snap)
}

func (m *mockLibvirtClient) RevertToSnapshot(snap libvirt.DomainSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revertToSnapshotCalls = append(m.revertToSnapshotCalls, snap.Name)
	return m.revertToSnapshotFunc(snap)
}

// mockStorageClient is a mock implementation of the StorageClient interface for testing.
type mockStorageClient struct {
	mu sync.Mutex

	// Configurable behavior
	lookupPoolFunc         func(name string) (libvirt.StoragePool, error)
	lookupVolumeFunc       func(pool libvirt.StoragePool, name string) (libvirt.StorageVol, error)
	lookupVolumeByPathFunc func(path string) (libvirt.StorageVol, error)
	deleteVolumeFunc       func(vol libvirt.StorageVol) error

	// Call tracking
	lookupPoolCalls         []string
	lookupVolumeCalls       []string // format: "pool/volume"
	lookupVolumeByPathCalls []string
	deleteVolumeCalls       []string // volume names
}

// newMockStorageClient creates a new mock storage client with default behavior.
func newMockStorageClient() *mockStorageClient {
	return &mockStorageClient{
		// Default: pool exists
		lookupPoolFunc: func(name string) (libvirt.StoragePool, error) {
			return libvirt.StoragePool{Name: name}, nil
		},
		// Default: volume exists
		lookupVolumeFunc: func(pool libvirt.StoragePool, name string) (libvirt.StorageVol, error) {
			return libvirt.StorageVol{Pool: pool.Name, Name: name}, nil
		},
		// Default: path is managed
		lookupVolumeByPathFunc: func(path string) (libvirt.StorageVol, error) {
			return libvirt.StorageVol{Name: path, Key: path}, nil
		},
		// Default: delete succeeds
		deleteVolumeFunc: func(vol libvirt.StorageVol) error {
			return nil
		},
	}
}

func (m *mockStorageClient) LookupPool(name string) (libvirt.StoragePool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookupPoolCalls = append(m.lookupPoolCalls, name)
	return m.lookupPoolFunc(name)
}

func (m *mockStorageClient) LookupVolume(pool libvirt.StoragePool, name string) (libvirt.StorageVol, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookupVolumeCalls = append(m.lookupVolumeCalls, pool.Name+"/"+name)
	return m.lookupVolumeFunc(pool, name)
}

func (m *mockStorageClient) LookupVolumeByPath(path string) (libvirt.StorageVol, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookupVolumeByPathCalls = append(m.lookupVolumeByPathCalls, path)
	return m.lookupVolumeByPathFunc(path)
}

func (m *mockStorageClient) DeleteVolume(vol libvirt.StorageVol) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteVolumeCalls = append(m.deleteVolumeCalls, vol.Name)
	return m.deleteVolumeFunc(vol)
}

// mustPatterns compiles selection patterns for a test.
func mustPatterns(t *testing.T, exprs ...string) []*regexp.Regexp {
	t.Helper()
	patterns, err := match.Compile(exprs)
	if err != nil {
		t.Fatalf("failed to compile patterns %v: %v", exprs, err)
	}
	return patterns
}
