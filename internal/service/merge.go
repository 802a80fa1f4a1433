package service

import (
	"btscan/internal/domain"
	"btscan/internal/store"
)

// reconcileInquiry folds a Classic inquiry batch into the session store.
//
// Runs once, after both scan phases have joined. Addresses already present
// are necessarily BLE-originated, and BLE fields stay authoritative: the
// only Classic-sourced field allowed through is an absent device_class, and
// the collision counts as one additional sighting. Any other Classic-only
// information is discarded on collision. Addresses unique to the batch are
// inserted unchanged, keeping their own sighting counts and timestamps.
func (c *Coordinator) reconcileInquiry(batch *store.Store) {
	for _, rec := range batch.Records() {
		if !c.store.Contains(rec.Address) {
			c.store.Adopt(rec)
			continue
		}

		class := rec.DeviceClass
		c.store.Upsert(rec.Address, domain.TransportClassic, func(existing *domain.DeviceRecord) {
			existing.FillDeviceClass(class)
		})
	}
}
