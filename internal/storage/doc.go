// Package storage persists simulation runs.
//
// Each run lives in its own directory under the store's base directory:
//
//	<base>/<run id>/metadata.json   parameters, status and final metrics
//	<base>/<run id>/scalars.csv     time,iteration,name,value rows
//	<base>/<run id>/snapshots/      LevelDB database of field snapshots
package storage
