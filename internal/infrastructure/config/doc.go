// Package config handles loading and validating NVX fleet configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// The fleet section lists the endpoints under supervision:
//
//	fleet:
//	  endpoints:
//	    - id: 0x10
//	      kind: decoder
//	      model: DM-NVX-D30
//	    - id: 0x13
//	      kind: encoder
//	      model: DM-NVX-350
//
// Security Considerations:
//   - Sensitive values (passwords, tokens) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//   - Set NVXFLEET_JWT_SECRET to enable the status API access gate
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(cfg.Fleet.Endpoints))
package config
