// Package connectors provides document sources for a digest run. Each
// connector lists the input documents available at a location and reads
// their bytes for normalisation.
package connectors
