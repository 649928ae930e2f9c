// Package folder evaluates smart folder rules against the artifact
// store. A smart folder is a named saved query: it persists a single
// filter rule and nothing else, so membership is always computed fresh
// and two folders can freely overlap.
package folder
