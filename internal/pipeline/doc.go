// Package pipeline provides a framework for executing analysis steps in
// sequence.
//
// The pipeline pattern processes a precursor protein through its stages:
// normalization, cleavage site detection, fragment extraction, bioactivity
// scoring, annotation, and ranking. Each stage is implemented as a Step
// that receives the accumulating report and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running analyses
// 4. Annotation steps can be included or omitted per run configuration
//
// The pipeline supports both single-precursor runs and batch processing of
// multi-record FASTA input with concurrency control using errgroup.
package pipeline
