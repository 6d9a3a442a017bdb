package vm

import (
	"fmt"
	"regexp"
	"time"
)

// StartResult reports one start attempt. Domains that were already running
// produce no result at all.
type StartResult struct {
	Domain string
	Err    error
}

// Start boots every matching domain that is not already running.
func Start(lv LibvirtClient, patterns []*regexp.Regexp) ([]StartResult, error) {
	domains, err := Enumerate(lv, patterns)
	if err != nil {
		return nil, err
	}

	var results []StartResult
	for _, dom := range domains {
		state, err := lv.DomainState(dom)
		if err != nil {
			results = append(results, StartResult{Domain: dom.Name, Err: fmt.Errorf("failed to get state: %w", err)})
			continue
		}
		if state == StateRunning {
			continue
		}
		results = append(results, StartResult{Domain: dom.Name, Err: lv.StartDomain(dom)})
	}
	return results, nil
}

// StopResult reports one stop attempt. Only running domains are stopped, so
// domains in any other state produce no result.
type StopResult struct {
	Domain string
	Err    error
}

// Stop shuts down every matching running domain. With force it pulls the
// plug instead of asking the guest to shut down.
func Stop(lv LibvirtClient, patterns []*regexp.Regexp, force bool) ([]StopResult, error) {
	domains, err := Enumerate(lv, patterns)
	if err != nil {
		return nil, err
	}

	var results []StopResult
	for _, dom := range domains {
		state, err := lv.DomainState(dom)
		if err != nil {
			results = append(results, StopResult{Domain: dom.Name, Err: fmt.Errorf("failed to get state: %w", err)})
			continue
		}
		if state != StateRunning {
			continue
		}
		res := StopResult{Domain: dom.Name}
		if force {
			res.Err = lv.DestroyDomain(dom)
		} else {
			res.Err = lv.ShutdownDomain(dom)
		}
		results = append(results, res)
	}
	return results, nil
}

// SyncResult reports one guest clock update. Time is the host time that was
// pushed to the guest.
type SyncResult struct {
	Domain string
	Time   time.Time
	Err    error
}

// SyncTime sets the guest clock of every matching running domain to the
// host time. The time is read per domain, not once per invocation.
func SyncTime(lv LibvirtClient, patterns []*regexp.Regexp) ([]SyncResult, error) {
	domains, err := Enumerate(lv, patterns)
	if err != nil {
		return nil, err
	}

	var results []SyncResult
	for _, dom := range domains {
		state, err := lv.DomainState(dom)
		if err != nil {
			results = append(results, SyncResult{Domain: dom.Name, Err: fmt.Errorf("failed to get state: %w", err)})
			continue
		}
		if state != StateRunning {
			continue
		}
		now := time.Now()
		results = append(results, SyncResult{Domain: dom.Name, Time: now, Err: lv.SetGuestTime(dom, now)})
	}
	return results, nil
}
