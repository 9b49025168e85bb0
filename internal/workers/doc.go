/*
Package workers sizes the crate decode pool.

Decoding a crate is dominated by reading the file and stat-ing every track it
references, so the pool is sized as an I/O-bound workload: two workers per
available CPU, where "available" is GOMAXPROCS rather than runtime.NumCPU so
that container CPU limits are respected.

	n := workers.ForJobs(len(crates), 16)

Operators can pin the count with the DECODE_WORKERS environment variable,
which is useful when the crate directory lives on a slow network share:

	DECODE_WORKERS=2 crate-sync watch

All functions are safe for concurrent use.
*/
package workers
