// Package index defines the nearest-neighbor index lifecycle over the
// sentence store: building an immutable snapshot from a point-in-time scan,
// detecting staleness as the store grows, and persisting the index together
// with its slot-to-row-id map as a single artifact. Implementations live in
// the flat (exact) and ivf (trained, partitioned) subpackages.
package index
