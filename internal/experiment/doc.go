// Package experiment drives engines for a fixed duration and collects
// sampled traces and metric values. [RunBatch] fans independent runs out over
// a worker pool for sweeps.
package experiment
