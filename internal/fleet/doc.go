// Package fleet owns the set of endpoints under supervision.
//
// The Registry is built once at startup: AddAll constructs every endpoint
// from configuration, RegisterAll binds each to its device and seals the
// registry. After sealing the id set never changes and the Registry is safe
// for concurrent reads.
//
// Registration tolerates partial failure. One endpoint failing to register
// never prevents the rest of the fleet from coming online:
//
//	reg := fleet.NewRegistry(bridge.NewDriver)
//	if err := reg.AddAll(cfgs); err != nil {
//	    return err // configuration error, fatal
//	}
//	for _, res := range reg.RegisterAll() {
//	    if !res.OK() {
//	        log.Warn("endpoint registration failed", "endpoint", res.ID, "error", res.Err)
//	    }
//	}
package fleet
