// Package config provides configuration parsing for livecoll.
//
// The configuration is stored in livecoll.json. It declares the live
// collections of a pipeline and the settings of the stream server.
//
// # Configuration File Structure
//
//	{
//	  "name": "todos",
//	  "collections": [
//	    {"name": "items", "kind": "list", "items": [1, 2, 3]},
//	    {"name": "evens", "kind": "filter", "source": "items", "predicate": "even"},
//	    {"name": "labels", "kind": "mapList", "source": "evens", "transform": "string"},
//	    {"name": "defaults", "kind": "map", "entries": [{"key": "theme", "value": "dark"}]},
//	    {"name": "overrides", "kind": "map"},
//	    {"name": "settings", "kind": "join", "sources": ["overrides", "defaults"]}
//	  ],
//	  "server": {
//	    "host": "localhost",
//	    "port": 7070,
//	    "sendQueue": 256,
//	    "historySize": 1024
//	  },
//	  "metrics": {"enabled": true, "namespace": "livecoll", "path": "/metrics"},
//	  "tracing": {"enabled": false},
//	  "log": {"level": "info", "format": "text"}
//	}
//
// A collection may only read from collections declared before it.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
