// Package embedding maintains the semantic index for captured
// artifacts: one fixed-dimension vector per artifact id, produced from
// its comprehensive description by a remote embedding API.
//
// The index lives in memory and is mirrored to a JSON file on every
// mutation via a temp-file-and-rename write, so a crash never leaves a
// half-written index behind. All vectors in one store share a single
// dimensionality; a mixed index is rejected at load rather than
// tolerated.
package embedding
