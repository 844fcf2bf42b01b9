// SPDX-License-Identifier: MIT

package config

import (
	"io"
	"os"
	"testing"

	xglog "github.com/ManuGH/snippets/internal/log"
)

func TestMain(m *testing.M) {
	xglog.Configure(xglog.Config{Output: io.Discard})
	os.Exit(m.Run())
}

// minimalEnv holds exactly the required keys.
func minimalEnv() MapEnv {
	return MapEnv{
		"DB_HOST":     "db1",
		"DB_USERNAME": "u",
		"DB_PASSWORD": "p",
		"DB_NAME":     "n",
		"JWT_SECRET":  "s",
		"REDIS_HOST":  "r",
	}
}

func withEnv(base MapEnv, kv ...string) MapEnv {
	out := make(MapEnv, len(base)+len(kv)/2)
	for k, v := range base {
		out[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = kv[i+1]
	}
	return out
}

func without(base MapEnv, keys ...string) MapEnv {
	out := withEnv(base)
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
