package vm

import (
	"fmt"
	"regexp"

	"github.com/digitalocean/go-libvirt"

	"github.com/virtadm/vms/internal/storage"
)

// VolumeResult reports one volume deletion attempt.
type VolumeResult struct {
	Target string
	Source string
	Err    error
}

// DeleteReport is the outcome of deleting one domain. Err set means the
// domain definition still exists and none of its volumes were touched.
// When Err is nil the domain was undefined and Volumes holds the per-volume
// outcomes, which succeed or fail independently.
type DeleteReport struct {
	Domain  string
	Stopped bool
	Skips   []storage.Skip
	Err     error
	Volumes []VolumeResult
}

// Delete removes every matching domain definition together with the storage
// volumes backing its disks. Volumes are resolved from the definition before
// anything is torn down, so a disk that cannot be mapped to a managed volume
// is reported instead of guessed at.
func Delete(lv LibvirtClient, sc StorageClient, patterns []*regexp.Regexp) ([]DeleteReport, error) {
	domains, err := Enumerate(lv, patterns)
	if err != nil {
		return nil, err
	}

	reports := make([]DeleteReport, 0, len(domains))
	for _, dom := range domains {
		reports = append(reports, deleteDomain(lv, sc, dom))
	}
	return reports, nil
}

func deleteDomain(lv LibvirtClient, sc StorageClient, dom libvirt.Domain) DeleteReport {
	report := DeleteReport{Domain: dom.Name}

	xmlDesc, err := lv.DomainXML(dom)
	if err != nil {
		report.Err = fmt.Errorf("failed to read domain description: %w", err)
		return report
	}
	disks, err := storage.ParseDisks(xmlDesc)
	if err != nil {
		report.Err = err
		return report
	}

	resolved, skipped := storage.Resolve(sc, disks)
	report.Skips = skipped

	state, err := lv.DomainState(dom)
	if err != nil {
		report.Err = fmt.Errorf("failed to get state: %w", err)
		return report
	}
	if state == StateRunning {
		if err := lv.DestroyDomain(dom); err != nil {
			report.Err = fmt.Errorf("failed to stop: %w", err)
			return report
		}
		report.Stopped = true
	}

	if err := lv.UndefineDomain(dom); err != nil {
		// the definition survived, so deleting its storage now would
		// leave a domain pointing at nothing
		report.Err = err
		return report
	}

	for _, res := range resolved {
		report.Volumes = append(report.Volumes, VolumeResult{
			Target: res.Target,
			Source: res.Source,
			Err:    sc.DeleteVolume(res.Vol),
		})
	}
	return report
}
