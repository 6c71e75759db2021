package importer

import "errors"

// ErrImportInProgress is returned when an import is triggered while another
// run holds the gate. The store gives no inter-run mutual exclusion, so
// concurrent runs are refused at this boundary instead of racing.
var ErrImportInProgress = errors.New("an import is already in progress")

// importGate is a one-slot semaphore serializing import runs.
type importGate struct {
	slot chan struct{}
}

func newImportGate() *importGate {
	return &importGate{slot: make(chan struct{}, 1)}
}

// TryAcquire claims the gate without blocking. The caller must Release
// exactly once per successful acquire.
func (g *importGate) TryAcquire() bool {
	select {
	case g.slot <- struct{}{}:
		return true
	default:
		return false
	}
}

func (g *importGate) Release() {
	<-g.slot
}
