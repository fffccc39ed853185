// Package ivf provides the approximate vector index: vectors are assigned
// to k-means partitions chosen during an up-front training pass, and a query
// probes only the closest partitions. Training commits the partition
// centroids permanently, so growing the corpus materially requires a full
// rebuild rather than incremental insertion.
package ivf
