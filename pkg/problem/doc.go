// Package problem defines the editable input of the feasibility engine: the
// ordered constraint list, the range box and the objective, together with
// validation that separates blocking errors from advisory warnings.
package problem
