// Package config loads the randstream process configuration.
//
// A configuration is built in layers: Defaults, then every file added with
// AddLayer (JSON, or YAML when the file ends in .yaml/.yml), then
// RANDSTREAM_* environment overrides. Objects are merged key by key so a
// layer only needs to mention what it changes.
//
//	loader := config.NewLoader()
//	loader.AddLayer("configs/base.yaml")
//	loader.AddLayer("configs/lab.json")
//	loader.EnableValidation(true)
//	cfg, err := loader.Load()
//
// A minimal file:
//
//	platform:
//	  org: c360
//	  id: lab-1
//	nats:
//	  urls: ["nats://localhost:4222"]
//	  reconnect_wait: 2s
//	components:
//	  random-main:
//	    type: processor
//	    name: random_number
//	    enabled: true
//	    config:
//	      distribution: Normal
//	      average: 10
//	      standard_deviation: 2
//
// Environment overrides: PLATFORM_ORG, PLATFORM_ID, PLATFORM_INSTANCE_ID,
// NATS_URLS (comma separated), NATS_USERNAME, NATS_PASSWORD, NATS_TOKEN,
// NATS_JETSTREAM, METRICS_ENABLED, METRICS_PORT and METRICS_PATH, each with
// the RANDSTREAM_ prefix.
package config
