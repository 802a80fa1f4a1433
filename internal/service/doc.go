// Package service implements the discovery coordination logic for btscan.
//
// # Coordinator
//
// Coordinator owns the shared record store for a session's lifetime and
// runs the ingest adapters according to the requested mode. In Both mode
// the Classic inquiry runs on its own goroutine concurrently with the BLE
// listening window; its batch result is joined (not streamed) back before
// the merge reconciler runs exactly once at the transport boundary. The
// store then passes, read-only, to the output codecs.
//
// # Merge Reconciliation
//
// When an address from the Classic batch already exists in the store it is
// necessarily BLE-originated, since BLE results land first. The merge is
// authority-asymmetric: no BLE-derived field is overwritten except an
// absent device_class, which is filled from the inquiry; the collision
// registers one additional sighting. Classic-only information beyond the
// device class is discarded on collision - a documented simplification, not
// a timestamp-based field reconciliation. Addresses unique to the Classic
// batch are inserted unchanged, after all BLE-created records.
//
// # Cancellation
//
// An external interrupt cancels the session context, which unwinds the
// active scan windows early. The coordinator still joins whatever results
// exist and returns a complete summary, so partial sessions are serialized
// rather than discarded.
package service
