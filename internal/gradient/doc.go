// Package gradient builds connectivity gradients and summarises signals projected onto them.
//
// The pipeline is linear and synchronous:
//
//	fc --Affinity--> affinity --Embed--> basis (P×k)
//	signal (P×T) --Project(basis)--> trajectory (k×T) --ComponentStd, MeanStep--> Dynamics
package gradient
