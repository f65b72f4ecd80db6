// Package generator drives one generation run over a schema graph.
//
// # Overview
//
// A Run owns the run-scoped state the pipeline needs: the normalized graph,
// the fallibility analyzer, the violation catalog builder and the builder
// synthesizer, each memoizing per shape so repeated lookups return identical
// artifacts. Nothing in a Run survives past it; a new run starts from a
// fresh Run value, never from process-global registries.
//
// Output staging is a two-phase pipeline: stages register
// (location, content producer) pairs into an ordered registry during
// generation, and a separate flush step invokes producers grouped by
// location in stable registration order.
package generator
