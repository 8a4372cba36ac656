// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types provides the shared wire and accounting types used across the
gateway: chat messages, normalized requests/responses, model descriptors,
usage rows, provider limits, and the structured error type. It has zero
dependencies on other gateway packages to avoid import cycles — every other
package imports types, never the reverse.
*/
package types
