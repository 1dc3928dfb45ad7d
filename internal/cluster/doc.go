// Package cluster owns the angular clustering stage of the track finder.
//
// Responsibilities: the Clusterer capability that abstracts a density-based
// clustering primitive, a one-dimensional DBSCAN implementation of it, and
// AngularClusterer which applies it to hit azimuths.
// Key types: Clusterer, Params, DBSCAN, AngularClusterer.
//
// Labels follow one convention throughout: Noise (-1) for unclustered
// points, non-negative ids otherwise.
package cluster
