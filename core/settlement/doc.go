// Package settlement implements balancing settlement for one timeslot.
//
// The static engine merges the brokers' balancing orders with a synthetic
// regulating-market curve into a single merit order, clears it greedily
// against the total imbalance and prices every broker with a VCG
// externality charge (p2) and a proportional imbalance charge (p1).
//
// Sign conventions: a positive net load is a surplus, a negative one a
// deficit. Exercised capacity carries the opposite sign of the imbalance it
// resolves. Positive charges are credits to the broker.
package settlement
