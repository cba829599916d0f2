// Package domain contains the core model for topcontainers.
//
// The domain is transport- and persistence-agnostic: it does not depend on CSV parsing,
// net/http, or the filesystem. Infra/adapters map into/from these types.
package domain
