// Package integrations fetches device descriptions from remote sources.
//
// Vendors publish backend configuration documents (backend_name, n_qubits,
// coupling_map, ...) over HTTP. [Client.FetchDevice] downloads one, caches
// the raw document and decodes it with [device.ParseBackend], so a device
// can be referenced by URL anywhere a device name is accepted:
//
//	client := integrations.NewClient(c, cache.ArtifactTTL, nil)
//	d, err := client.FetchDevice(ctx, "https://example.org/backends/lima.json", false)
//
// Transient failures (connection errors and 5xx responses) are retried with
// exponential backoff; a 404 fails immediately with [ErrNotFound].
package integrations
