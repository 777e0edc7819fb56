// Package polytope computes the feasible region of a system of linear
// constraints over x, y and z inside a cubic range box.
//
// The pipeline is a pure function, [Compute]. It parses the enabled
// constraints, enumerates candidate vertices by intersecting planes three at
// a time, keeps the candidates that are in range, feasible and on at least
// three bounding planes, evaluates the objective at each vertex and finally
// reconstructs the planar faces of the convex hull.
//
// Enumeration is cubic in the number of constraints and face reconstruction
// is cubic in the number of vertices. Both are fine for the tens of
// constraints a person types by hand.
package polytope
