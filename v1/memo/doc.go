// Package memo caches the results of expensive computations for a bounded
// time. Concurrent requests for the same missing key are collapsed into a
// single execution of the compute function.
package memo
