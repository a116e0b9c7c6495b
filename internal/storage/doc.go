// Package storage persists runs as directories under a base path:
//
//	<name>_<timestamp>/
//	    metadata.json  run summary, final ledger and metric values
//	    config.yaml    full configuration, loadable with config.Load
//	    trace.csv      one row per sampled tick
//	    floaters.csv   one row per floater per sampled tick
package storage
