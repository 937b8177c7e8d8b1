// Package spatial answers "which nodes are where" for interactive frames:
// x-range queries, point-to-node hit tests and viewport culling.
//
// # Index
//
// [Build] takes a snapshot of node references sorted ascending by x. Queries
// binary-search the snapshot:
//
//   - [Index.QueryRange] returns the contiguous window of nodes with
//     xMin <= x <= xMax, identical to a linear filter.
//   - [Index.HitTest] scans outward from the queried x, nearest x first, while
//     the x-distance stays within the largest radius, and returns the first
//     node whose own radius contains the point.
//
// HitTest is a bounded approximate match, not a global nearest-neighbour
// search: when discs overlap, the node closest in x wins even if another is
// closer in Euclidean distance. [ExactIndex] is a k-d tree alternative that
// returns the truly nearest containing node and satisfies the same
// [HitTester] interface.
//
// # Staleness
//
// Snapshots record the graph generation they were built from. Once the
// simulation moves nodes, queries fail with a STALE_INDEX error until the
// index is rebuilt. Rebuild after convergence or at explicit settled
// checkpoints, not per frame.
//
// # Culling
//
// [Cull] maps the screen rectangle into world space. A node is visible when
// its centre lies in that rectangle expanded by the maximum radius; an edge
// is visible when either endpoint lies in the unexpanded rectangle or its
// segment crosses it.
package spatial
