// Package protoimport lowers protobuf definitions into a schema graph.
//
// Messages become structure shapes, repeated and map fields get synthesized
// list and map shapes, enum fields become enum-constrained string scalars,
// and every RPC input/output message is marked as a boundary root. The
// resulting graph feeds the same pipeline as a native schema document.
package protoimport
