// Copyright 2024 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by an MIT license that can be
// found in the LICENSE file.

/*
Package metrics provides the gateway's Prometheus metrics collection.

# Overview

Collector registers every metric once at construction via promauto, so
callers never manage a prometheus.Registry directly. Metrics are grouped by
domain: HTTP ingress, router/provider outcomes, the model-list cache, and
the usage store.

# Core types

  - Collector: holds every Counter/Histogram vector and exposes one Record*
    method per observation point.

# Coverage

  - HTTP: request count, duration, request/response size, grouped by
    method/path/status (status bucketed to 2xx/3xx/4xx/5xx).
  - Router: candidates enumerated per request, failovers by reason, headroom
    rejections, and exhausted-all-candidates count.
  - LLM: upstream call count, duration, and token usage by provider/model.
  - Cache: hit/miss counts by cache type.
  - Store: usage-store query duration by operation (insert/aggregate).
*/
package metrics
