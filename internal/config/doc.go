// Package config provides configuration parsing for vmctl.
//
// The configuration is stored in vmctl.json in the working directory and
// may be overridden by VMCTL_* environment variables.
//
// # Configuration File Structure
//
//	{
//	  "log": {"level": "info", "format": "text"},
//	  "server": {"host": "localhost", "port": 7070, "watchBuffer": 16},
//	  "metrics": {"enabled": true, "namespace": "viewmodel"},
//	  "tracing": {"enabled": false},
//	  "feed": {"source": "s3://snapshots/groups.jsonl", "s3Region": "eu-west-1"},
//	  "dispatcher": {"slowTask": "50ms"}
//	}
//
// # Environment
//
// Every field has a VMCTL_ variable, e.g. VMCTL_SERVER_PORT=9090 or
// VMCTL_FEED_SOURCE=./groups.jsonl. Environment values win over the file.
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.ServerAddress())
package config
