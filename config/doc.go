/*
Package config provides the gateway's configuration management.

# Overview

config owns the full lifecycle of application configuration: multi-source
loading, runtime hot reload, change auditing, and an HTTP admin API.
Configuration merges in priority order: defaults -> YAML file -> environment
variables.

# Core types

  - Config: the top-level aggregate, covering Server, Mongo, Redis,
    Providers (enablement + rate/quota limits table), and Log
  - Loader: builder-style loader for the config path, env prefix, and
    custom validators
  - HotReloadManager: watches the config file and applies safe field-level
    updates without a restart, recording a change log
  - FileWatcher: polling + debounce based file-change detector
  - ConfigAPIHandler: HTTP endpoints for reading config, triggering a
    reload, listing hot-reloadable fields, and querying change history

# Usage

	cfg, err := config.NewLoader().
		WithConfigPath("config.yaml").
		WithEnvPrefix("GATEWAY").
		Load()
*/
package config
